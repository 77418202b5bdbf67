package soft

import (
	"sort"
	"time"
)

// Remove terminated paths from the active set. Every surviving path is
// assigned an output slot equal to the exclusive prefix sum of the validity
// flags and scattered, together with its intersection record, into the back
// buffer pair, which then becomes current. Returns the new active count.
//
// The prefix sum runs as a two-level scan: a per-chunk exclusive scan on the
// device, a serial scan over the chunk totals, then a scatter that folds the
// chunk offset in. With an all-valid input the operation is an
// order-preserving identity.
func (tr *Tracer) compactPaths(numActive int, sortByMaterial bool) (int, time.Duration, error) {
	if numActive == 0 {
		return 0, 0, nil
	}

	b := tr.buffers
	numChunks := tr.dev.Workers()
	chunk := (numActive + numChunks - 1) / numChunks

	scanTime, err := tr.dev.ExecKernel1D(0, numChunks, func(c int) {
		first := c * chunk
		last := first + chunk
		if last > numActive {
			last = numActive
		}
		var sum uint32
		for i := first; i < last; i++ {
			b.slots[i] = sum
			sum += b.flags[i]
		}
		if first < last {
			b.chunkSums[c] = sum
		} else {
			b.chunkSums[c] = 0
		}
	})
	tr.timeKernel(scanValidityFlags, scanTime)
	if err != nil {
		return 0, scanTime, err
	}

	// Exclusive scan over the chunk totals; the grand total is the new
	// active count.
	var total uint32
	for c := 0; c < numChunks; c++ {
		sum := b.chunkSums[c]
		b.chunkSums[c] = total
		total += sum
	}
	newCount := int(total)

	srcPaths, srcIsects := b.curPaths(), b.curIsects()
	dstPaths, dstIsects := b.backPaths(), b.backIsects()

	scatterTime, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		if b.flags[gid] != 1 {
			return
		}
		slot := b.slots[gid] + b.chunkSums[gid/chunk]
		dstPaths[slot] = srcPaths[gid]
		dstIsects[slot] = srcIsects[gid]
	})
	tr.timeKernel(compactPaths, scatterTime)
	if err != nil {
		return 0, scanTime + scatterTime, err
	}
	b.swap()

	elapsed := scanTime + scatterTime
	if sortByMaterial && newCount > 1 {
		sortTime, err := tr.sortByMaterial(newCount)
		elapsed += sortTime
		if err != nil {
			return 0, elapsed, err
		}
	}

	// Survivors are all valid until the next stage overwrites the flags.
	for i := 0; i < newCount; i++ {
		b.flags[i] = 1
	}

	return newCount, elapsed, nil
}

// Reorder the compacted active set by the cached material kind tag so that
// the shading stage processes runs of identical BSDF families. The sort is
// keyed on material kind only; original pixel order within a kind is not
// part of the contract.
func (tr *Tracer) sortByMaterial(numActive int) (time.Duration, error) {
	start := time.Now()
	b := tr.buffers

	perm := b.slots[:numActive]
	for i := range perm {
		perm[i] = uint32(i)
	}

	srcIsects := b.curIsects()
	sort.SliceStable(perm, func(i, j int) bool {
		return srcIsects[perm[i]].matKind < srcIsects[perm[j]].matKind
	})

	srcPaths := b.curPaths()
	dstPaths, dstIsects := b.backPaths(), b.backIsects()
	if _, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		dstPaths[gid] = srcPaths[perm[gid]]
		dstIsects[gid] = srcIsects[perm[gid]]
	}); err != nil {
		return time.Since(start), err
	}
	b.swap()

	elapsed := time.Since(start)
	tr.timeKernel(sortPathsByMaterial, elapsed)
	return elapsed, nil
}
