package soft

import (
	"math/rand"
	"time"

	"github.com/bdwhst/altair/types"
)

// Integer hash by Thomas Wang; decorrelates consecutive lane indices before
// they are used as random seeds.
func wangHash(v uint32) uint32 {
	v = (v ^ 61) ^ (v >> 16)
	v *= 9
	v = v ^ (v >> 4)
	v *= 0x27d4eb2d
	v = v ^ (v >> 15)
	return v
}

// Create the deterministic per-lane random source for a given (pixel,
// iteration, depth) tuple. Re-running an iteration yields bit-identical
// sample sequences.
func seededRand(iteration uint32, pixelIndex int32, depth uint32) *rand.Rand {
	seed := wangHash((1<<31)|(depth<<22)|iteration) ^ wangHash(uint32(pixelIndex))
	return rand.New(rand.NewSource(int64(seed)))
}

// Fill the full-resolution path buffer with camera rays, one per pixel,
// jittered within the pixel footprint for stochastic anti-aliasing.
func (tr *Tracer) generatePrimaryRays(iteration uint32) (time.Duration, error) {
	cam := tr.sceneData.Camera
	paths := tr.buffers.curPaths()
	frameW := int(tr.frameW)
	halfW := float32(tr.frameW) * 0.5
	halfH := float32(tr.frameH) * 0.5

	elapsed, err := tr.dev.ExecKernel2D(frameW, int(tr.frameH), func(x, y int) {
		pixelIndex := int32(y*frameW + x)
		rng := seededRand(iteration, pixelIndex, cam.MaxDepth)

		px := float32(x) - halfW + rng.Float32()
		py := float32(y) - halfH + rng.Float32()

		dir := cam.View.
			Sub(cam.Right.Mul(cam.PixelLength[0] * px)).
			Sub(cam.Up.Mul(cam.PixelLength[1] * py)).
			Normalize()

		paths[pixelIndex] = pathSegment{
			ray:              ray{origin: cam.Position, dir: dir},
			throughput:       types.XYZ(1, 1, 1),
			pixelIndex:       pixelIndex,
			remainingBounces: int32(cam.MaxDepth),
		}
	})

	tr.timeKernel(generatePrimaryRays, elapsed)
	return elapsed, err
}
