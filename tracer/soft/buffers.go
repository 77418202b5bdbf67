package soft

import (
	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

type ray struct {
	origin types.Vec3
	dir    types.Vec3
}

// One in-flight light-transport path. Mutated in place by the shading stage
// and relocated between the ping-pong buffers by compaction.
type pathSegment struct {
	ray        ray
	throughput types.Vec3
	pixelIndex int32

	// Decremented per bounce but not read back for termination; the global
	// depth cap of the bounce loop is the effective bound.
	remainingBounces int32
}

// A transient per-bounce intersection record. A t of -1 marks the no-hit
// state. matKind caches the material kind tag so the compactor can sort by
// material without a second indirection through the material list.
type intersection struct {
	t             float32
	materialIndex int32
	point         types.Vec3
	normal        types.Vec3
	matKind       scene.MaterialKind
}

// The per-render working set: ping-pong path/intersection buffer pairs with
// an explicit current index, per-path validity flags and compaction slots,
// the persistent radiance accumulator and the display-ready RGBA frame
// buffer. Within a stage one buffer of a pair is only ever read and the
// other only written; compaction flips cur instead of copying back.
type bufferSet struct {
	numPixels int

	paths  [2][]pathSegment
	isects [2][]intersection
	cur    int

	flags []uint32
	slots []uint32
	// Per-worker partial sums for the two-level prefix scan.
	chunkSums []uint32

	accum []types.Vec3
	frame []uint8
}

func newBufferSet(numPixels, numChunks int, frame []uint8) (*bufferSet, error) {
	if numPixels <= 0 || len(frame) < numPixels*4 {
		return nil, ErrAllocatingBuffer
	}

	b := &bufferSet{
		numPixels: numPixels,
		flags:     make([]uint32, numPixels),
		slots:     make([]uint32, numPixels),
		chunkSums: make([]uint32, numChunks),
		accum:     make([]types.Vec3, numPixels),
		frame:     frame,
	}
	for i := 0; i < 2; i++ {
		b.paths[i] = make([]pathSegment, numPixels)
		b.isects[i] = make([]intersection, numPixels)
	}
	return b, nil
}

// The buffers read by the current stage.
func (b *bufferSet) curPaths() []pathSegment {
	return b.paths[b.cur]
}

func (b *bufferSet) curIsects() []intersection {
	return b.isects[b.cur]
}

// The scatter targets for compaction.
func (b *bufferSet) backPaths() []pathSegment {
	return b.paths[1-b.cur]
}

func (b *bufferSet) backIsects() []intersection {
	return b.isects[1-b.cur]
}

// Make the freshly compacted buffer pair current.
func (b *bufferSet) swap() {
	b.cur = 1 - b.cur
}

// Release all buffers. Safe to call multiple times.
func (b *bufferSet) Release() {
	b.paths[0], b.paths[1] = nil, nil
	b.isects[0], b.isects[1] = nil, nil
	b.flags = nil
	b.slots = nil
	b.chunkSums = nil
	b.accum = nil
	b.frame = nil
}
