package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// Bounce-loop rounds for the last iteration.
	Bounces uint32

	// Render time for the last iteration.
	IterationTime time.Duration
}

type FrameStats struct {
	// Attached tracer stats.
	Tracers []TracerStat

	// Number of accumulated iterations.
	Iterations uint32

	// Total render time for the frame.
	RenderTime time.Duration
}
