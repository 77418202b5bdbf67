package soft

import "errors"

var (
	ErrAlreadySetup     = errors.New("soft tracer: already set up")
	ErrNotSetup         = errors.New("soft tracer: not set up")
	ErrSceneNotDefined  = errors.New("soft tracer: no scene defined")
	ErrInvalidFrameDims = errors.New("soft tracer: invalid frame dimensions")
	ErrAllocatingBuffer = errors.New("soft tracer: could not allocate working buffers")
)
