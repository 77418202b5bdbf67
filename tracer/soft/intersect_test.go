package soft

import (
	"math"
	"math/rand"
	"testing"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

func newSceneTracer(t *testing.T, sc *scene.Scene, frameW, frameH uint32) *Tracer {
	t.Helper()

	tr := NewTracer("test", 4, DefaultPipeline(UseBvh, false))
	if err := tr.Setup(sc, frameW, frameH, make([]uint8, frameW*frameH*4)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tr.Close)
	return tr
}

// A small mixed scene: two analytic spheres, a rotated cube and a
// two-triangle quad.
func intersectTestScene(t *testing.T) *scene.Scene {
	t.Helper()

	sc := &scene.Scene{Camera: scene.NewCamera(45, 8, 8, 4)}
	white := sc.AddMaterial(scene.Material{Kind: scene.MatDiffuse, Color: types.XYZ(0.9, 0.9, 0.9)})
	red := sc.AddMaterial(scene.Material{Kind: scene.MatDiffuse, Color: types.XYZ(0.9, 0.1, 0.1)})

	sc.AddObject(scene.NewObject(scene.GeomSphere, white, types.XYZ(-1.5, 0, -5), types.Vec3{}, types.XYZ(2, 2, 2)))
	sc.AddObject(scene.NewObject(scene.GeomSphere, red, types.XYZ(1, 1, -7), types.Vec3{}, types.XYZ(1, 1, 1)))
	sc.AddObject(scene.NewObject(scene.GeomCube, red, types.XYZ(1.5, -0.5, -6), types.XYZ(0, 30, 0), types.XYZ(1.5, 1, 1)))

	base := int32(len(sc.Vertices))
	sc.Vertices = append(sc.Vertices,
		types.XYZ(-2, -2, -4),
		types.XYZ(2, -2, -4),
		types.XYZ(2, -2, -8),
		types.XYZ(-2, -2, -8),
	)
	sc.Triangles = append(sc.Triangles,
		[3]int32{base, base + 1, base + 2},
		[3]int32{base, base + 2, base + 3},
	)
	quad := scene.NewObject(scene.GeomMesh, white, types.Vec3{}, types.Vec3{}, types.XYZ(1, 1, 1))
	quad.TriStart = 0
	quad.TriEnd = 2
	sc.AddObject(quad)

	sc.BuildPrimitives()
	if err := sc.BuildBvh(scene.DefaultMaxPrimsPerLeaf); err != nil {
		t.Fatal(err)
	}
	return sc
}

// The stackless BVH query must find the exact same nearest hits as the
// exhaustive brute-force kernel.
func TestIntersectionBvhMatchesBruteForce(t *testing.T) {
	sc := intersectTestScene(t)
	tr := newSceneTracer(t, sc, 8, 8)
	b := tr.buffers

	rng := rand.New(rand.NewSource(42))
	paths := b.curPaths()
	for i := range paths {
		dir := types.XYZ(
			rng.Float32()*2-1,
			rng.Float32()*2-1,
			-rng.Float32()-0.1,
		).Normalize()
		paths[i] = pathSegment{
			ray:        ray{origin: types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, 0), dir: dir},
			pixelIndex: int32(i),
		}
	}

	if _, err := tr.rayIntersectionBruteForce(len(paths)); err != nil {
		t.Fatal(err)
	}
	expIsects := make([]intersection, len(paths))
	copy(expIsects, b.curIsects())
	expFlags := make([]uint32, len(paths))
	copy(expFlags, b.flags)

	if _, err := tr.rayIntersectionQuery(len(paths)); err != nil {
		t.Fatal(err)
	}

	isects := b.curIsects()
	for i := range paths {
		if b.flags[i] != expFlags[i] {
			t.Fatalf("lane %d: hit flag mismatch: brute-force %d, bvh %d", i, expFlags[i], b.flags[i])
		}
		if expFlags[i] == 0 {
			continue
		}
		if diff := float64(isects[i].t - expIsects[i].t); math.Abs(diff) > 1e-3 {
			t.Fatalf("lane %d: hit distance mismatch: brute-force %f, bvh %f", i, expIsects[i].t, isects[i].t)
		}
		if isects[i].materialIndex != expIsects[i].materialIndex {
			t.Fatalf("lane %d: material mismatch: brute-force %d, bvh %d", i, expIsects[i].materialIndex, isects[i].materialIndex)
		}
		if !types.ApproxEqual(isects[i].normal, expIsects[i].normal, 1e-3) {
			t.Fatalf("lane %d: normal mismatch: brute-force %v, bvh %v", i, expIsects[i].normal, isects[i].normal)
		}
	}
}

func TestIntersectionNoHit(t *testing.T) {
	sc := intersectTestScene(t)
	tr := newSceneTracer(t, sc, 8, 8)
	b := tr.buffers

	paths := b.curPaths()
	for i := range paths {
		paths[i] = pathSegment{
			ray:        ray{origin: types.XYZ(0, 0, 0), dir: types.XYZ(0, 0, 1)},
			pixelIndex: int32(i),
		}
		b.flags[i] = 1
	}

	if _, err := tr.rayIntersectionQuery(len(paths)); err != nil {
		t.Fatal(err)
	}

	isects := b.curIsects()
	for i := range paths {
		if b.flags[i] != 0 {
			t.Fatalf("lane %d: expected the miss to clear the validity flag", i)
		}
		if isects[i].t != noHitT {
			t.Fatalf("lane %d: expected no-hit sentinel %f; got %f", i, float32(noHitT), isects[i].t)
		}
	}
}

func TestSphereTest(t *testing.T) {
	// Frontal hit on the unit sphere.
	tHit, normal, ok := sphereTest(types.XYZ(0, 0, 2), types.XYZ(0, 0, -1))
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(float64(tHit-1.5)) > 1e-5 {
		t.Fatalf("expected t 1.5; got %f", tHit)
	}
	if !types.ApproxEqual(normal, types.XYZ(0, 0, 1), 1e-5) {
		t.Fatalf("expected outward normal (0 0 1); got %v", normal)
	}

	// Origin inside; the far root is reported with the outward normal.
	tHit, normal, ok = sphereTest(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	if !ok {
		t.Fatal("expected a hit from inside")
	}
	if math.Abs(float64(tHit-0.5)) > 1e-5 {
		t.Fatalf("expected t 0.5; got %f", tHit)
	}
	if !types.ApproxEqual(normal, types.XYZ(0, 0, -1), 1e-5) {
		t.Fatalf("expected normal (0 0 -1); got %v", normal)
	}

	if _, _, ok = sphereTest(types.XYZ(0, 2, 2), types.XYZ(0, 0, -1)); ok {
		t.Fatal("expected a miss")
	}
}

func TestBoxTest(t *testing.T) {
	tHit, normal, ok := boxTest(types.XYZ(0, 0, 2), types.XYZ(0, 0, -1))
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(float64(tHit-1.5)) > 1e-5 {
		t.Fatalf("expected t 1.5; got %f", tHit)
	}
	if !types.ApproxEqual(normal, types.XYZ(0, 0, 1), 1e-5) {
		t.Fatalf("expected the entered face normal (0 0 1); got %v", normal)
	}

	// Interior origin reports the exit face.
	tHit, normal, ok = boxTest(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	if !ok {
		t.Fatal("expected a hit from inside")
	}
	if math.Abs(float64(tHit-0.5)) > 1e-5 {
		t.Fatalf("expected t 0.5; got %f", tHit)
	}
	if !types.ApproxEqual(normal, types.XYZ(0, 0, -1), 1e-5) {
		t.Fatalf("expected the exit face normal (0 0 -1); got %v", normal)
	}

	if _, _, ok = boxTest(types.XYZ(2, 0, 2), types.XYZ(0, 0, -1)); ok {
		t.Fatal("expected a miss")
	}
}

func TestTriangleTest(t *testing.T) {
	v0 := types.XYZ(0, 0, 0)
	v1 := types.XYZ(1, 0, 0)
	v2 := types.XYZ(0, 1, 0)

	tHit, normal, ok := triangleTest(v0, v1, v2, types.XYZ(0.25, 0.25, 1), types.XYZ(0, 0, -1))
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(float64(tHit-1)) > 1e-5 {
		t.Fatalf("expected t 1; got %f", tHit)
	}
	if !types.ApproxEqual(normal, types.XYZ(0, 0, 1), 1e-5) {
		t.Fatalf("expected winding normal (0 0 1); got %v", normal)
	}

	// Outside the barycentric range.
	if _, _, ok = triangleTest(v0, v1, v2, types.XYZ(0.9, 0.9, 1), types.XYZ(0, 0, -1)); ok {
		t.Fatal("expected a miss outside the triangle")
	}

	// Parallel ray.
	if _, _, ok = triangleTest(v0, v1, v2, types.XYZ(0.25, 0.25, 1), types.XYZ(1, 0, 0)); ok {
		t.Fatal("expected a miss for a parallel ray")
	}
}

// Scaling an object must scale the reported world-space hit distance.
func TestPrimitiveWorldSpaceDistance(t *testing.T) {
	sc := &scene.Scene{Camera: scene.NewCamera(45, 4, 4, 1)}
	mat := sc.AddMaterial(scene.Material{Kind: scene.MatDiffuse, Color: types.XYZ(1, 1, 1)})
	sc.AddObject(scene.NewObject(scene.GeomSphere, mat, types.XYZ(0, 0, -10), types.Vec3{}, types.XYZ(4, 4, 4)))
	sc.BuildPrimitives()
	if err := sc.BuildBvh(scene.DefaultMaxPrimsPerLeaf); err != nil {
		t.Fatal(err)
	}

	tr := newSceneTracer(t, sc, 4, 4)

	isect, ok := tr.testPrimitive(0, -1, ray{origin: types.XYZ(0, 0, 0), dir: types.XYZ(0, 0, -1)})
	if !ok {
		t.Fatal("expected a hit")
	}
	// Sphere of world radius 2 centered at z=-10.
	if math.Abs(float64(isect.t-8)) > 1e-4 {
		t.Fatalf("expected world-space hit distance 8; got %f", isect.t)
	}
	if !types.ApproxEqual(isect.normal, types.XYZ(0, 0, 1), 1e-4) {
		t.Fatalf("expected world normal (0 0 1); got %v", isect.normal)
	}
}
