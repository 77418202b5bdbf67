package renderer

import "errors"

var (
	ErrNoPipeline       = errors.New("renderer: no tracing pipeline defined")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
