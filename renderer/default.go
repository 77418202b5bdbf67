package renderer

import (
	"image"
	"sync"
	"time"

	"github.com/bdwhst/altair/log"
	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/tracer"
	"github.com/bdwhst/altair/tracer/soft"
)

// A headless renderer: drives a single software tracer through the requested
// number of accumulation iterations and hands back the final frame.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	sceneData *scene.Scene

	tr    *soft.Tracer
	frame *image.RGBA

	doneChan chan uint32
	errChan  chan error

	closeOnce sync.Once
	closed    chan struct{}

	stats FrameStats
}

// Create a new headless renderer for the given scene and tracing pipeline.
func NewDefault(sc *scene.Scene, pipeline *soft.Pipeline, opts Options) (Renderer, error) {
	return newDefault(sc, pipeline, opts)
}

func newDefault(sc *scene.Scene, pipeline *soft.Pipeline, opts Options) (*defaultRenderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if pipeline == nil {
		return nil, ErrNoPipeline
	}

	if opts.FrameW == 0 || opts.FrameH == 0 {
		opts.FrameW, opts.FrameH = 512, 512
	}

	// Fold the render options into the scene camera.
	sc.Camera.FrameW = opts.FrameW
	sc.Camera.FrameH = opts.FrameH
	if opts.NumBounces != 0 {
		sc.Camera.MaxDepth = opts.NumBounces
	}
	sc.Camera.Update()

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		sceneData: sc,
		frame:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
		doneChan:  make(chan uint32, 1),
		errChan:   make(chan error, 1),
		closed:    make(chan struct{}),
	}

	r.tr = soft.NewTracer("soft", opts.Workers, pipeline)
	if err := r.tr.Setup(sc, opts.FrameW, opts.FrameH, r.frame.Pix); err != nil {
		r.tr.Close()
		return nil, err
	}

	return r, nil
}

func (r *defaultRenderer) Render() (*image.RGBA, error) {
	spp := r.options.SamplesPerPixel
	if spp == 0 {
		spp = 1
	}

	start := time.Now()
	for iteration := uint32(0); iteration < spp; iteration++ {
		select {
		case <-r.closed:
			return nil, ErrInterrupted
		default:
		}

		if err := r.renderFrame(iteration); err != nil {
			return nil, err
		}
	}

	r.stats.Iterations = spp
	r.stats.RenderTime = time.Since(start)
	r.logger.Noticef("rendered %d iterations in %s", spp, r.stats.RenderTime)

	return r.frame, nil
}

// Run a single accumulation iteration and block until the tracer reports
// completion.
func (r *defaultRenderer) renderFrame(iteration uint32) error {
	r.tr.Enqueue(tracer.FrameRequest{
		Iteration: iteration,
		Progress:  r.options.Progress,
		DoneChan:  r.doneChan,
		ErrChan:   r.errChan,
	})

	select {
	case <-r.doneChan:
		return nil
	case err := <-r.errChan:
		return err
	}
}

func (r *defaultRenderer) Close() {
	r.closeOnce.Do(func() { close(r.closed) })
	if r.tr != nil {
		r.tr.Close()
	}
}

func (r *defaultRenderer) Stats() FrameStats {
	trStats := r.tr.Stats()
	r.stats.Tracers = []TracerStat{{
		Id:            r.tr.Id(),
		Bounces:       trStats.Bounces,
		IterationTime: trStats.FrameTime,
	}}
	return r.stats
}
