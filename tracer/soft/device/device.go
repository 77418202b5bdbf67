package device

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	ErrDeviceClosed = fmt.Errorf("device: dispatch on closed device")
)

// A software compute device emulating wide data-parallel execution: a kernel
// function is dispatched over a 1-D global index range and executed by a
// fixed pool of workers, one logical lane per index. A dispatch returns only
// after every lane has run, which is the synchronization barrier separating
// pipeline stages. Lanes must not rely on any ordering within a dispatch.
type Device struct {
	Name string

	workers int

	mu     sync.Mutex
	closed bool
}

// Create a new software device. A non-positive worker count selects one
// worker per logical CPU.
func New(workers int) *Device {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Device{
		Name:    fmt.Sprintf("soft/%d", workers),
		workers: workers,
	}
}

// Get the worker count.
func (d *Device) Workers() int {
	return d.workers
}

// Implements Stringer.
func (d *Device) String() string {
	return fmt.Sprintf("Name: %s\nSpecs: %d workers", d.Name, d.workers)
}

// Shut down the device. Safe to call multiple times.
func (d *Device) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Dispatch a kernel over the [offset, offset+globalSize) index range and wait
// for all lanes to complete. Returns the dispatch wall time.
func (d *Device) ExecKernel1D(offset, globalSize int, kernel func(gid int)) (time.Duration, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ErrDeviceClosed
	}
	d.mu.Unlock()

	start := time.Now()
	if globalSize <= 0 {
		return time.Since(start), nil
	}

	chunk := (globalSize + d.workers - 1) / d.workers

	var wg sync.WaitGroup
	for first := offset; first < offset+globalSize; first += chunk {
		last := first + chunk
		if last > offset+globalSize {
			last = offset + globalSize
		}

		wg.Add(1)
		go func(first, last int) {
			defer wg.Done()
			for gid := first; gid < last; gid++ {
				kernel(gid)
			}
		}(first, last)
	}
	wg.Wait()

	return time.Since(start), nil
}

// Dispatch a kernel over a 2-D index range.
func (d *Device) ExecKernel2D(width, height int, kernel func(x, y int)) (time.Duration, error) {
	return d.ExecKernel1D(0, width*height, func(gid int) {
		kernel(gid%width, gid/width)
	})
}
