package renderer

import "image"

type Renderer interface {
	// Render frame.
	Render() (*image.RGBA, error)

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
