package soft

import (
	"sync"
	"time"

	"github.com/bdwhst/altair/log"
	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/tracer"
	"github.com/bdwhst/altair/tracer/soft/device"
)

// A software tracer: implements the tracer.Tracer interface on top of the
// data-parallel software device, one pipeline dispatch per kernel with a
// full barrier in between.
type Tracer struct {
	sync.Mutex
	wg sync.WaitGroup

	logger log.Logger

	id string

	dev      *device.Device
	pipeline *Pipeline

	buffers *bufferSet

	sceneData *scene.Scene
	frameW    uint32
	frameH    uint32

	// Wall time per kernel for the last iteration.
	kernelTimes [numKernels]time.Duration

	stats tracer.Stats

	frameReqChan chan tracer.FrameRequest
	closeChan    chan struct{}
}

// Create a new software tracer backed by a worker pool of the given size.
// A non-positive worker count selects one worker per logical CPU.
func NewTracer(id string, workers int, pipeline *Pipeline) *Tracer {
	return &Tracer{
		logger:       log.New("soft tracer (" + id + ")"),
		id:           id,
		dev:          device.New(workers),
		pipeline:     pipeline,
		frameReqChan: make(chan tracer.FrameRequest),
		closeChan:    make(chan struct{}),
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Retrieve last iteration statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return &tr.stats
}

// Upload scene data, allocate the per-pixel working buffers and start the
// worker goroutine that consumes iteration requests.
func (tr *Tracer) Setup(sc *scene.Scene, frameW, frameH uint32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.buffers != nil {
		return ErrAlreadySetup
	}
	if sc == nil || sc.Camera == nil {
		return ErrSceneNotDefined
	}
	if frameW == 0 || frameH == 0 {
		return ErrInvalidFrameDims
	}

	buffers, err := newBufferSet(int(frameW*frameH), tr.dev.Workers(), frameBuffer)
	if err != nil {
		return err
	}

	tr.sceneData = sc
	tr.frameW = frameW
	tr.frameH = frameH
	tr.buffers = buffers

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case req := <-tr.frameReqChan:
				if err := tr.process(&req); err != nil {
					req.ErrChan <- err
					continue
				}
				req.DoneChan <- req.Iteration
			case <-tr.closeChan:
				return
			}
		}
	}()

	// Wait for worker goroutine to start
	<-readyChan
	return nil
}

// Enqueue an iteration request. Blocks until the worker picks it up or the
// tracer shuts down.
func (tr *Tracer) Enqueue(req tracer.FrameRequest) {
	select {
	case tr.frameReqChan <- req:
	case <-tr.closeChan:
	}
}

// Shutdown and cleanup tracer. Safe to call multiple times.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	select {
	case <-tr.closeChan:
		// already closed
	default:
		close(tr.closeChan)
	}
	tr.wg.Wait()

	if tr.buffers != nil {
		tr.buffers.Release()
		tr.buffers = nil
	}
	tr.dev.Close()
}

// Run the pipeline for a single iteration.
func (tr *Tracer) process(req *tracer.FrameRequest) error {
	if tr.buffers == nil {
		return ErrNotSetup
	}

	start := time.Now()
	for kt := kernelType(0); kt < numKernels; kt++ {
		tr.kernelTimes[kt] = 0
	}

	stages := []PipelineStage{}
	if req.Iteration == 0 && tr.pipeline.Reset != nil {
		stages = append(stages, tr.pipeline.Reset)
	}
	stages = append(stages, tr.pipeline.PrimaryRayGenerator, tr.pipeline.Integrator)
	stages = append(stages, tr.pipeline.PostProcess...)

	for _, stage := range stages {
		if _, err := stage(tr, req); err != nil {
			return err
		}
	}

	tr.stats.FrameTime = time.Since(start)

	if tr.logger != nil {
		for kt := kernelType(0); kt < numKernels; kt++ {
			if tr.kernelTimes[kt] > 0 {
				tr.logger.Debugf("iteration %d: %s took %s", req.Iteration, kt, tr.kernelTimes[kt])
			}
		}
	}
	return nil
}

func (tr *Tracer) timeKernel(kt kernelType, d time.Duration) {
	tr.kernelTimes[kt] += d
}
