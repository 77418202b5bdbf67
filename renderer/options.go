package renderer

import (
	"github.com/bdwhst/altair/tracer"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of accumulated iterations for a still frame. Interactive
	// renders treat 0 as "refine until the window closes".
	SamplesPerPixel uint32

	// Depth cap for the bounce loop. Zero keeps the scene camera's value.
	NumBounces uint32

	// Worker pool size for the software device; <= 0 selects one worker per
	// logical CPU.
	Workers int

	// Optional per-bounce progress sink.
	Progress tracer.ProgressFn
}
