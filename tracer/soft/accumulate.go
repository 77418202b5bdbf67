package soft

import (
	"time"
)

// Zero the radiance accumulator. Runs once per render and again whenever the
// iteration counter restarts.
func (tr *Tracer) clearAccumulator() (time.Duration, error) {
	b := tr.buffers

	elapsed, err := tr.dev.ExecKernel1D(0, b.numPixels, func(gid int) {
		b.accum[gid][0] = 0
		b.accum[gid][1] = 0
		b.accum[gid][2] = 0
	})

	tr.timeKernel(clearAccumulator, elapsed)
	return elapsed, err
}

// Fold the throughput of paths that survived the depth cap into the
// accumulator. NaN-carrying throughputs are dropped so a single bad sample
// cannot poison a pixel for the rest of the render.
func (tr *Tracer) accumulatePaths(numActive int) (time.Duration, error) {
	if numActive == 0 {
		return 0, nil
	}

	b := tr.buffers
	paths := b.curPaths()

	elapsed, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		p := &paths[gid]
		if hasNaN(p.throughput) {
			return
		}
		b.accum[p.pixelIndex] = b.accum[p.pixelIndex].Add(p.throughput)
	})

	tr.timeKernel(accumulatePaths, elapsed)
	return elapsed, err
}

// Convert the accumulated radiance into the display-ready RGBA frame buffer,
// averaging over the iteration count. Pixels whose accumulator carries a NaN
// are painted magenta so numeric faults are visible instead of silently
// black.
func (tr *Tracer) finalizeFrame(iterations uint32) (time.Duration, error) {
	b := tr.buffers
	scale := 1 / float32(iterations)

	elapsed, err := tr.dev.ExecKernel1D(0, b.numPixels, func(gid int) {
		base := gid << 2

		if hasNaN(b.accum[gid]) {
			b.frame[base] = 255
			b.frame[base+1] = 0
			b.frame[base+2] = 255
			b.frame[base+3] = 255
			return
		}

		for c := 0; c < 3; c++ {
			v := b.accum[gid][c] * scale
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			b.frame[base+c] = uint8(v * 255)
		}
		b.frame[base+3] = 255
	})

	tr.timeKernel(finalizeFrame, elapsed)
	return elapsed, err
}
