package scene

import (
	"testing"

	"github.com/bdwhst/altair/types"
)

func makeSphereGrid(t *testing.T, count int) *Scene {
	t.Helper()

	sc := &Scene{}
	mat := sc.AddMaterial(Material{Kind: MatDiffuse, Color: types.XYZ(1, 1, 1)})
	for i := 0; i < count; i++ {
		pos := types.XYZ(float32(i%4)*2, float32(i/4)*2, float32(i%3))
		sc.AddObject(NewObject(GeomSphere, mat, pos, types.Vec3{}, types.XYZ(1, 1, 1)))
	}
	sc.BuildPrimitives()
	return sc
}

func TestBuildBvhInvariants(t *testing.T) {
	sc := makeSphereGrid(t, 11)
	if err := sc.BuildBvh(2); err != nil {
		t.Fatal(err)
	}

	if len(sc.BvhNodes) == 0 {
		t.Fatal("expected builder to emit at least one node")
	}
	if sc.BvhNodes[0].Parent != -1 {
		t.Fatalf("expected root parent to be -1; got %d", sc.BvhNodes[0].Parent)
	}

	primsSeen := make([]bool, len(sc.Primitives))
	for i := range sc.BvhNodes {
		node := &sc.BvhNodes[i]

		if i != 0 {
			if node.Parent < 0 || int(node.Parent) >= len(sc.BvhNodes) {
				t.Fatalf("node %d: invalid parent %d", i, node.Parent)
			}
			parent := &sc.BvhNodes[node.Parent]
			if parent.Left != int32(i) && parent.Right != int32(i) {
				t.Fatalf("node %d: parent %d does not link back to it", i, node.Parent)
			}
		}

		if node.IsLeaf() {
			if node.PrimCount == 0 {
				t.Fatalf("node %d: leaf with empty primitive range", i)
			}
			for p := node.FirstPrim; p < node.FirstPrim+node.PrimCount; p++ {
				if primsSeen[p] {
					t.Fatalf("primitive %d referenced by more than one leaf", p)
				}
				primsSeen[p] = true

				min, max := sc.PrimitiveBounds(sc.Primitives[p])
				for axis := 0; axis < 3; axis++ {
					if min[axis] < node.Min[axis]-1e-4 || max[axis] > node.Max[axis]+1e-4 {
						t.Fatalf("node %d: primitive %d bounds exceed node bounds on axis %d", i, p, axis)
					}
				}
			}
		} else {
			if node.Left == -1 || node.Right == -1 {
				t.Fatalf("node %d: interior node with missing child", i)
			}
			for _, child := range []int32{node.Left, node.Right} {
				c := &sc.BvhNodes[child]
				if c.Parent != int32(i) {
					t.Fatalf("node %d: child %d carries parent %d", i, child, c.Parent)
				}
			}
		}
	}

	for p, seen := range primsSeen {
		if !seen {
			t.Fatalf("primitive %d not referenced by any leaf", p)
		}
	}
}

func TestBuildBvhSinglePrimitive(t *testing.T) {
	sc := makeSphereGrid(t, 1)
	if err := sc.BuildBvh(2); err != nil {
		t.Fatal(err)
	}

	if len(sc.BvhNodes) != 1 {
		t.Fatalf("expected a single root leaf; got %d nodes", len(sc.BvhNodes))
	}
	root := &sc.BvhNodes[0]
	if !root.IsLeaf() || root.PrimCount != 1 || root.Parent != -1 {
		t.Fatalf("unexpected root node: %+v", root)
	}
}

func TestBuildBvhNoPrimitives(t *testing.T) {
	sc := &Scene{}
	if err := sc.BuildBvh(2); err == nil {
		t.Fatal("expected an error when building a BVH with no primitives")
	}
}
