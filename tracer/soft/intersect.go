package soft

import (
	"math"
	"time"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

const (
	// Minimum object-space hit distance; rejects self-intersections at the
	// ray origin.
	minHitT = 1e-4

	// Sentinel hit distance for the no-hit state.
	noHitT = -1.0
)

// Test a ray against a single primitive. Analytic shapes are unit-sized in
// object space; the ray is transformed by the owning object's inverse
// transform, the hit is mapped back to world space and t is reported as the
// world-space distance from the ray origin. Returns ok == false on a miss.
func (tr *Tracer) testPrimitive(objIndex, triIndex int32, r ray) (intersection, bool) {
	obj := &tr.sceneData.Objects[objIndex]

	localOrigin := obj.InvTransform.TransformPoint(r.origin)
	localDir := obj.InvTransform.TransformDir(r.dir)

	var tLocal float32
	var localNormal types.Vec3
	var ok bool

	switch {
	case triIndex >= 0:
		tri := tr.sceneData.Triangles[triIndex]
		tLocal, localNormal, ok = triangleTest(
			tr.sceneData.Vertices[tri[0]],
			tr.sceneData.Vertices[tri[1]],
			tr.sceneData.Vertices[tri[2]],
			localOrigin, localDir,
		)
	case obj.Type == scene.GeomSphere:
		tLocal, localNormal, ok = sphereTest(localOrigin, localDir)
	default:
		tLocal, localNormal, ok = boxTest(localOrigin, localDir)
	}
	if !ok {
		return intersection{t: noHitT}, false
	}

	localPoint := localOrigin.Add(localDir.Mul(tLocal))
	worldPoint := obj.Transform.TransformPoint(localPoint)
	worldNormal := obj.InvTransposeTransform.TransformDir(localNormal).Normalize()

	return intersection{
		t:             worldPoint.Sub(r.origin).Len(),
		materialIndex: obj.MaterialIndex,
		point:         worldPoint,
		normal:        worldNormal,
	}, true
}

// Ray/unit-sphere test in object space (radius 0.5, centered at the origin).
// Returns the nearest positive hit distance and the outward surface normal.
func sphereTest(ro, rd types.Vec3) (float32, types.Vec3, bool) {
	a := rd.Dot(rd)
	b := 2 * ro.Dot(rd)
	c := ro.Dot(ro) - 0.25

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, types.Vec3{}, false
	}

	sq := float32(math.Sqrt(float64(disc)))
	t := (-b - sq) / (2 * a)
	if t < minHitT {
		t = (-b + sq) / (2 * a)
	}
	if t < minHitT {
		return 0, types.Vec3{}, false
	}

	normal := ro.Add(rd.Mul(t)).Normalize()
	return t, normal, true
}

// Ray/unit-cube slab test in object space (extent [-0.5, 0.5] on each axis).
// Returns the outward normal of the entered (or, for interior origins,
// exited) face.
func boxTest(ro, rd types.Vec3) (float32, types.Vec3, bool) {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	var nearAxis, farAxis int
	var nearSign, farSign float32

	for axis := 0; axis < 3; axis++ {
		if d := rd[axis]; d != 0 {
			t0 := (-0.5 - ro[axis]) / d
			t1 := (0.5 - ro[axis]) / d
			sign := float32(-1)
			if t0 > t1 {
				t0, t1 = t1, t0
				sign = 1
			}
			if t0 > tNear {
				tNear, nearAxis, nearSign = t0, axis, sign
			}
			if t1 < tFar {
				tFar, farAxis, farSign = t1, axis, -sign
			}
		} else if ro[axis] < -0.5 || ro[axis] > 0.5 {
			return 0, types.Vec3{}, false
		}
	}

	if tNear > tFar || tFar < minHitT {
		return 0, types.Vec3{}, false
	}

	t, axis, sign := tNear, nearAxis, nearSign
	if t < minHitT {
		// Origin inside the box; report the exit face.
		t, axis, sign = tFar, farAxis, farSign
	}

	var normal types.Vec3
	normal[axis] = sign
	return t, normal, true
}

// Möller-Trumbore ray/triangle test. The returned normal follows the
// triangle winding; orientation relative to the ray is resolved by the
// shading stage.
func triangleTest(v0, v1, v2, ro, rd types.Vec3) (float32, types.Vec3, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	p := rd.Cross(e2)
	det := e1.Dot(p)
	if det > -1e-8 && det < 1e-8 {
		return 0, types.Vec3{}, false
	}
	invDet := 1 / det

	s := ro.Sub(v0)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, types.Vec3{}, false
	}

	q := s.Cross(e1)
	v := rd.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, types.Vec3{}, false
	}

	t := e2.Dot(q) * invDet
	if t < minHitT {
		return 0, types.Vec3{}, false
	}

	return t, e1.Cross(e2).Normalize(), true
}

// Record the winning hit for a lane: cache the material kind tag alongside
// the record so compaction can sort by material without touching the
// material list again.
func (tr *Tracer) writeHit(laneIndex int, best intersection, found bool) {
	b := tr.buffers
	if !found {
		b.curIsects()[laneIndex] = intersection{t: noHitT}
		b.flags[laneIndex] = 0
		return
	}
	best.matKind = tr.sceneData.Materials[best.materialIndex].Kind
	b.curIsects()[laneIndex] = best
	b.flags[laneIndex] = 1
}

// Find nearest hits for the active path set by exhaustively testing every
// object (and, for meshes, every triangle in their range).
func (tr *Tracer) rayIntersectionBruteForce(numActive int) (time.Duration, error) {
	paths := tr.buffers.curPaths()
	objects := tr.sceneData.Objects

	elapsed, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		r := paths[gid].ray

		var best intersection
		best.t = float32(math.Inf(1))
		found := false

		for objIndex := range objects {
			if objects[objIndex].Type == scene.GeomMesh {
				for tri := objects[objIndex].TriStart; tri < objects[objIndex].TriEnd; tri++ {
					if isect, ok := tr.testPrimitive(int32(objIndex), tri, r); ok && isect.t < best.t {
						best = isect
						found = true
					}
				}
				continue
			}
			if isect, ok := tr.testPrimitive(int32(objIndex), -1, r); ok && isect.t < best.t {
				best = isect
				found = true
			}
		}

		tr.writeHit(gid, best, found)
	})

	tr.timeKernel(rayIntersectionBruteForce, elapsed)
	return elapsed, err
}

// Find nearest hits for the active path set using the stackless BVH walk.
func (tr *Tracer) rayIntersectionQuery(numActive int) (time.Duration, error) {
	paths := tr.buffers.curPaths()
	nodes := tr.sceneData.BvhNodes
	prims := tr.sceneData.Primitives

	elapsed, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		r := paths[gid].ray

		var best intersection
		best.t = float32(math.Inf(1))
		found := false

		walkBvh(nodes, r, func(node *scene.BvhNode) {
			for p := node.FirstPrim; p < node.FirstPrim+node.PrimCount; p++ {
				prim := prims[p]
				if isect, ok := tr.testPrimitive(prim.ObjectIndex, prim.TriangleIndex, r); ok && isect.t < best.t {
					best = isect
					found = true
				}
			}
		})

		tr.writeHit(gid, best, found)
	})

	tr.timeKernel(rayIntersectionQuery, elapsed)
	return elapsed, err
}
