package soft

import (
	"image"
	"image/png"
	"os"
	"time"

	"github.com/bdwhst/altair/tracer"
)

// Selects the intersection strategy used by the integrator.
type IntersectionMode uint8

const (
	UseBvh IntersectionMode = iota
	UseBruteForce
)

// Implements Stringer.
func (m IntersectionMode) String() string {
	if m == UseBruteForce {
		return "brute-force"
	}
	return "bvh"
}

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error)

// The list of pluggable stages that are used to render the scene.
type Pipeline struct {
	// Reset the tracer state. This stage is executed for the first
	// iteration of a render (and again whenever the iteration counter is
	// reset, e.g. after a camera move).
	Reset PipelineStage

	// This stage fills the full-resolution path buffer with primary rays.
	PrimaryRayGenerator PipelineStage

	// This stage traces the paths through the bounce loop and adds their
	// contribution into the accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed prior to
	// presenting the final frame.
	PostProcess []PipelineStage
}

func DefaultPipeline(mode IntersectionMode, sortByMaterial bool) *Pipeline {
	return &Pipeline{
		Reset:               ClearAccumulator(),
		PrimaryRayGenerator: PerspectiveCamera(),
		Integrator:          MonteCarloIntegrator(mode, sortByMaterial),
		PostProcess: []PipelineStage{
			FinalizeFrame(),
		},
	}
}

// Clear the accumulator buffer.
func ClearAccumulator() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.clearAccumulator()
	}
}

// Use a perspective camera for the primary ray generation stage.
func PerspectiveCamera() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.generatePrimaryRays(req.Iteration)
	}
}

// Map the accumulated radiance into the display-ready frame buffer.
func FinalizeFrame() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.finalizeFrame(req.Iteration + 1)
	}
}

// Dump a copy of the RGBA frame buffer to a png file.
func SaveFrameBuffer(imgFile string) PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		start := time.Now()

		f, err := os.Create(imgFile)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		im := image.NewRGBA(image.Rect(0, 0, int(tr.frameW), int(tr.frameH)))
		copy(im.Pix, tr.buffers.frame)

		return time.Since(start), png.Encode(f, im)
	}
}

// Use a compaction-based montecarlo pathtracer implementation: intersect the
// active set, compact away terminated paths, scatter the survivors and
// compact again, until no path remains active or the depth cap is hit.
// Remaining survivors are folded into the accumulator.
func MonteCarloIntegrator(mode IntersectionMode, sortByMaterial bool) PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		start := time.Now()

		numActive := tr.buffers.numPixels
		maxDepth := tr.sceneData.Camera.MaxDepth

		var bounce uint32
		for bounce = 0; numActive > 0 && bounce < maxDepth; bounce++ {
			var err error
			if mode == UseBruteForce {
				_, err = tr.rayIntersectionBruteForce(numActive)
			} else {
				_, err = tr.rayIntersectionQuery(numActive)
			}
			if err != nil {
				return time.Since(start), err
			}

			// Sorting only makes sense here, right before shading, while the
			// cached material-kind tags of this bounce are still fresh.
			numActive, _, err = tr.compactPaths(numActive, sortByMaterial)
			if err != nil {
				return time.Since(start), err
			}
			if numActive == 0 {
				if req.Progress != nil {
					req.Progress(bounce, 0)
				}
				break
			}

			if _, err = tr.shadeHits(bounce, req.Iteration, numActive); err != nil {
				return time.Since(start), err
			}

			numActive, _, err = tr.compactPaths(numActive, false)
			if err != nil {
				return time.Since(start), err
			}

			if req.Progress != nil {
				req.Progress(bounce, uint32(numActive))
			}
		}
		tr.stats.Bounces = bounce

		// Paths that exhausted the depth budget still contribute their
		// current throughput exactly once.
		if _, err := tr.accumulatePaths(numActive); err != nil {
			return time.Since(start), err
		}

		return time.Since(start), nil
	}
}
