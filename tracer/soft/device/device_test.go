package device

import (
	"sync/atomic"
	"testing"
)

func TestExecKernel1DCoversRange(t *testing.T) {
	dev := New(4)
	defer dev.Close()

	const offset = 3
	const globalSize = 1001

	hits := make([]int32, offset+globalSize)
	_, err := dev.ExecKernel1D(offset, globalSize, func(gid int) {
		atomic.AddInt32(&hits[gid], 1)
	})
	if err != nil {
		t.Fatal(err)
	}

	for gid, count := range hits {
		exp := int32(1)
		if gid < offset {
			exp = 0
		}
		if count != exp {
			t.Fatalf("expected lane %d to run %d times; ran %d", gid, exp, count)
		}
	}
}

func TestExecKernel1DBarrier(t *testing.T) {
	dev := New(8)
	defer dev.Close()

	// All writes from a dispatch must be visible after it returns.
	out := make([]int, 4096)
	if _, err := dev.ExecKernel1D(0, len(out), func(gid int) { out[gid] = gid }); err != nil {
		t.Fatal(err)
	}
	for gid, v := range out {
		if v != gid {
			t.Fatalf("lane %d write not visible after dispatch; got %d", gid, v)
		}
	}
}

func TestExecKernel2D(t *testing.T) {
	dev := New(2)
	defer dev.Close()

	const w, h = 17, 9
	var hits [w * h]int32
	_, err := dev.ExecKernel2D(w, h, func(x, y int) {
		atomic.AddInt32(&hits[y*w+x], 1)
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, count := range hits {
		if count != 1 {
			t.Fatalf("expected pixel %d to be visited once; visited %d times", i, count)
		}
	}
}

func TestExecKernel1DEmpty(t *testing.T) {
	dev := New(2)
	defer dev.Close()

	if _, err := dev.ExecKernel1D(0, 0, func(gid int) { t.Fatal("kernel must not run") }); err != nil {
		t.Fatal(err)
	}
}

func TestExecKernel1DClosed(t *testing.T) {
	dev := New(2)
	dev.Close()
	dev.Close() // idempotent

	if _, err := dev.ExecKernel1D(0, 10, func(gid int) {}); err != ErrDeviceClosed {
		t.Fatalf("expected ErrDeviceClosed; got %v", err)
	}
}
