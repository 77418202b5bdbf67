package soft

import (
	"reflect"
	"testing"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

// A hand-built 5-node tree laid out along the x axis:
//
//	          0 [0,5]
//	         / \
//	 [0,1] 1    2 [2,5]
//	           / \
//	   [2,3] 3    4 [4,5]
func walkTestTree() []scene.BvhNode {
	box := func(minX, maxX float32) (types.Vec3, types.Vec3) {
		return types.XYZ(minX, -1, -1), types.XYZ(maxX, 1, 1)
	}

	nodes := make([]scene.BvhNode, 5)
	nodes[0] = scene.BvhNode{Left: 1, Right: 2, Parent: -1}
	nodes[1] = scene.BvhNode{Left: -1, Right: -1, Parent: 0, FirstPrim: 0, PrimCount: 1}
	nodes[2] = scene.BvhNode{Left: 3, Right: 4, Parent: 0}
	nodes[3] = scene.BvhNode{Left: -1, Right: -1, Parent: 2, FirstPrim: 1, PrimCount: 1}
	nodes[4] = scene.BvhNode{Left: -1, Right: -1, Parent: 2, FirstPrim: 2, PrimCount: 1}

	nodes[0].SetBBox(box(0, 5))
	nodes[1].SetBBox(box(0, 1))
	nodes[2].SetBBox(box(2, 5))
	nodes[3].SetBBox(box(2, 3))
	nodes[4].SetBBox(box(4, 5))
	return nodes
}

func collectLeafVisits(nodes []scene.BvhNode, r ray) []int32 {
	var visited []int32
	walkBvhNodes(nodes, r, func(nodeIndex int32) {
		visited = append(visited, nodeIndex)
	})
	return visited
}

func TestWalkBvhNearFirstOrder(t *testing.T) {
	nodes := walkTestTree()

	specs := []struct {
		r        ray
		expOrder []int32
	}{
		// Towards +x the leaves are entered front to back.
		{ray{origin: types.XYZ(-10, 0, 0), dir: types.XYZ(1, 0, 0)}, []int32{1, 3, 4}},
		// Towards -x the order reverses.
		{ray{origin: types.XYZ(10, 0, 0), dir: types.XYZ(-1, 0, 0)}, []int32{4, 3, 1}},
	}

	for specIndex, spec := range specs {
		if got := collectLeafVisits(nodes, spec.r); !reflect.DeepEqual(got, spec.expOrder) {
			t.Errorf("[spec %d] expected leaf visit order %v; got %v", specIndex, spec.expOrder, got)
		}
	}
}

func TestWalkBvhMiss(t *testing.T) {
	nodes := walkTestTree()

	r := ray{origin: types.XYZ(-10, 0, 0), dir: types.XYZ(0, 1, 0)}
	if got := collectLeafVisits(nodes, r); len(got) != 0 {
		t.Fatalf("expected no leaf visits for a ray missing every box; got %v", got)
	}
}

func TestWalkBvhPartialOverlap(t *testing.T) {
	nodes := walkTestTree()

	// Grazes only the right subtree.
	r := ray{origin: types.XYZ(2.5, -10, 0), dir: types.XYZ(0.2, 1, 0)}
	got := collectLeafVisits(nodes, r)
	for _, nodeIndex := range got {
		if nodeIndex == 1 {
			t.Fatalf("expected leaf 1 to be culled; visit order %v", got)
		}
	}
	if len(got) == 0 {
		t.Fatal("expected at least one leaf visit")
	}
}

func TestWalkBvhSingleLeafRoot(t *testing.T) {
	nodes := []scene.BvhNode{{Left: -1, Right: -1, Parent: -1, FirstPrim: 0, PrimCount: 3}}
	nodes[0].SetBBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))

	hit := ray{origin: types.XYZ(-5, 0, 0), dir: types.XYZ(1, 0, 0)}
	if got := collectLeafVisits(nodes, hit); !reflect.DeepEqual(got, []int32{0}) {
		t.Fatalf("expected the root leaf to be visited once; got %v", got)
	}

	miss := ray{origin: types.XYZ(-5, 0, 0), dir: types.XYZ(-1, 0, 0)}
	if got := collectLeafVisits(nodes, miss); len(got) != 0 {
		t.Fatalf("expected no visit for a miss; got %v", got)
	}
}

func TestWalkBvhEmptyTree(t *testing.T) {
	r := ray{origin: types.XYZ(0, 0, 0), dir: types.XYZ(1, 0, 0)}
	walkBvhNodes(nil, r, func(int32) {
		t.Fatal("leaf visit on an empty tree")
	})
}

func TestRayHitsBoxFromInside(t *testing.T) {
	min := types.XYZ(-1, -1, -1)
	max := types.XYZ(1, 1, 1)
	invDir := types.XYZ(1, float32(1)/1e-8, float32(1)/1e-8)

	if !rayHitsBox(min, max, types.XYZ(0, 0, 0), invDir) {
		t.Fatal("expected a hit for a ray starting inside the box")
	}
	if rayHitsBox(min, max, types.XYZ(5, 0, 0), invDir) {
		t.Fatal("expected a miss for a ray starting past the box and pointing away")
	}
}
