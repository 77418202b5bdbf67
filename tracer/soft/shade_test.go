package soft

import (
	"math"
	"testing"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

func newShadeTracer(t *testing.T, materials []scene.Material, numPaths int) *Tracer {
	t.Helper()

	tr := newTestTracer(t, numPaths)
	tr.sceneData = &scene.Scene{
		Camera:    scene.NewCamera(45, uint32(numPaths), 1, 8),
		Materials: materials,
	}
	return tr
}

func TestShadeHitsEmissive(t *testing.T) {
	materials := []scene.Material{
		{Kind: scene.MatEmissive, Color: types.XYZ(1, 0.5, 0.25), Emittance: 4},
	}
	tr := newShadeTracer(t, materials, 4)
	b := tr.buffers

	paths := b.curPaths()
	isects := b.curIsects()
	for i := range paths {
		paths[i] = pathSegment{
			throughput: types.XYZ(0.5, 0.5, 0.5),
			pixelIndex: int32(i),
		}
		isects[i] = intersection{t: 1, materialIndex: 0, normal: types.XYZ(0, 0, 1)}
		b.flags[i] = 1
	}

	if _, err := tr.shadeHits(0, 0, len(paths)); err != nil {
		t.Fatal(err)
	}

	// throughput (0.5, 0.5, 0.5) * color (1, 0.5, 0.25) * emittance 4
	exp := types.XYZ(2, 1, 0.5)
	for i := range paths {
		if b.flags[i] != 0 {
			t.Fatalf("lane %d: expected the emitter hit to terminate the path", i)
		}
		if !types.ApproxEqual(b.accum[i], exp, 1e-5) {
			t.Fatalf("lane %d: expected accumulated radiance %v; got %v", i, exp, b.accum[i])
		}
	}
}

func TestShadeHitsEmissiveNaNGuard(t *testing.T) {
	materials := []scene.Material{
		{Kind: scene.MatEmissive, Color: types.XYZ(1, 1, 1), Emittance: 4},
	}
	tr := newShadeTracer(t, materials, 1)
	b := tr.buffers

	nan := float32(math.NaN())
	b.curPaths()[0] = pathSegment{throughput: types.XYZ(nan, 1, 1), pixelIndex: 0}
	b.curIsects()[0] = intersection{t: 1, materialIndex: 0, normal: types.XYZ(0, 0, 1)}
	b.flags[0] = 1

	if _, err := tr.shadeHits(0, 0, 1); err != nil {
		t.Fatal(err)
	}

	if b.flags[0] != 0 {
		t.Fatal("expected the path to terminate")
	}
	if b.accum[0] != (types.Vec3{}) {
		t.Fatalf("expected the poisoned contribution to be dropped; accumulator holds %v", b.accum[0])
	}
}

func TestShadeHitsDiffuseBounce(t *testing.T) {
	albedo := types.XYZ(0.7, 0.5, 0.3)
	materials := []scene.Material{
		{Kind: scene.MatDiffuse, Color: albedo},
	}
	tr := newShadeTracer(t, materials, 8)
	b := tr.buffers

	hitPoint := types.XYZ(0, 0, -5)
	normal := types.XYZ(0, 0, 1)
	paths := b.curPaths()
	isects := b.curIsects()
	for i := range paths {
		paths[i] = pathSegment{
			ray:              ray{origin: types.XYZ(0, 0, 0), dir: types.XYZ(0, 0, -1)},
			throughput:       types.XYZ(1, 1, 1),
			pixelIndex:       int32(i),
			remainingBounces: 8,
		}
		isects[i] = intersection{t: 5, materialIndex: 0, point: hitPoint, normal: normal}
		b.flags[i] = 1
	}

	if _, err := tr.shadeHits(0, 0, len(paths)); err != nil {
		t.Fatal(err)
	}

	for i := range paths {
		p := &paths[i]
		if b.flags[i] != 1 {
			t.Fatalf("lane %d: expected the diffuse bounce to keep the path alive", i)
		}
		if p.remainingBounces != 7 {
			t.Fatalf("lane %d: expected 7 remaining bounces; got %d", i, p.remainingBounces)
		}

		// Cosine-weighted sampling: the throughput update collapses to the
		// albedo exactly.
		if !types.ApproxEqual(p.throughput, albedo, 1e-3) {
			t.Fatalf("lane %d: expected throughput %v; got %v", i, albedo, p.throughput)
		}

		if p.ray.dir.Dot(normal) <= 0 {
			t.Fatalf("lane %d: expected the scattered ray in the normal hemisphere; got %v", i, p.ray.dir)
		}
		offset := p.ray.origin.Sub(hitPoint)
		if offset.Dot(normal) <= 0 || offset.Len() > 2*shadowBias {
			t.Fatalf("lane %d: expected the origin nudged off the surface along the normal; got offset %v", i, offset)
		}

		// The accumulator is untouched by a non-emitter bounce.
		if b.accum[i] != (types.Vec3{}) {
			t.Fatalf("lane %d: expected no direct contribution; got %v", i, b.accum[i])
		}
	}
}

// Shading must be reproducible for a fixed (iteration, bounce) so restarted
// renders converge to the same image.
func TestShadeHitsDeterministic(t *testing.T) {
	materials := []scene.Material{
		{Kind: scene.MatDiffuse, Color: types.XYZ(0.7, 0.7, 0.7)},
	}

	run := func(t *testing.T) []pathSegment {
		tr := newShadeTracer(t, materials, 16)
		b := tr.buffers
		paths := b.curPaths()
		isects := b.curIsects()
		for i := range paths {
			paths[i] = pathSegment{
				ray:        ray{dir: types.XYZ(0, 0, -1)},
				throughput: types.XYZ(1, 1, 1),
				pixelIndex: int32(i),
			}
			isects[i] = intersection{t: 1, materialIndex: 0, point: types.XYZ(0, 0, -1), normal: types.XYZ(0, 0, 1)}
			b.flags[i] = 1
		}
		if _, err := tr.shadeHits(2, 5, len(paths)); err != nil {
			t.Fatal(err)
		}
		out := make([]pathSegment, len(paths))
		copy(out, paths)
		return out
	}

	first := run(t)
	second := run(t)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("lane %d: expected identical shading results across runs", i)
		}
	}
}
