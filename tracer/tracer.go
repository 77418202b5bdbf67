package tracer

import (
	"time"

	"github.com/bdwhst/altair/scene"
)

// A callback invoked once per bounce with the current traversal depth and
// the number of paths still active after compaction. A nil callback is a
// valid no-op progress sink.
type ProgressFn func(bounce, activePaths uint32)

// A unit of work that is processed by a tracer: one full-frame sampling
// iteration. The first iteration of a render carries index 0 and resets the
// tracer's accumulator.
type FrameRequest struct {
	// The monotonically increasing iteration index for this render.
	Iteration uint32

	// Optional per-bounce progress sink.
	Progress ProgressFn

	// A channel to signal on iteration completion with the iteration index.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics for the most recently completed iteration.
type Stats struct {
	// The number of intersect/scatter rounds executed.
	Bounces uint32

	// The time for tracing this iteration.
	FrameTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Upload scene data, allocate per-pixel working buffers and attach the
	// display-ready RGBA frame buffer the tracer writes into.
	Setup(sc *scene.Scene, frameW, frameH uint32, frameBuffer []uint8) error

	// Enqueue an iteration request.
	Enqueue(FrameRequest)

	// Retrieve last iteration statistics.
	Stats() *Stats
}
