package scene

import (
	"errors"
	"sort"

	"github.com/bdwhst/altair/types"
)

// Default number of primitives per BVH leaf.
const DefaultMaxPrimsPerLeaf = 2

var errNoPrimitives = errors.New("scene: cannot build BVH for a scene with no primitives")

// Regenerate the primitive list from the object list. Analytic objects
// contribute a single primitive; mesh objects contribute one primitive per
// triangle in their range.
func (sc *Scene) BuildPrimitives() {
	sc.Primitives = sc.Primitives[:0]
	for objIndex, obj := range sc.Objects {
		if obj.Type == GeomMesh {
			for tri := obj.TriStart; tri < obj.TriEnd; tri++ {
				sc.Primitives = append(sc.Primitives, Primitive{ObjectIndex: int32(objIndex), TriangleIndex: tri})
			}
			continue
		}
		sc.Primitives = append(sc.Primitives, Primitive{ObjectIndex: int32(objIndex), TriangleIndex: -1})
	}
}

// Build a flattened BVH over the scene primitive list using a median split on
// the longest centroid axis. The primitive list is reordered so that leaves
// reference contiguous ranges. The produced node list satisfies the layout
// consumed by the tracer: root at index 0 with parent -1, parent back-pointers
// on every other node and non-empty primitive ranges on leaves.
func (sc *Scene) BuildBvh(maxPrimsPerLeaf int) error {
	if len(sc.Primitives) == 0 {
		return errNoPrimitives
	}
	if maxPrimsPerLeaf <= 0 {
		maxPrimsPerLeaf = DefaultMaxPrimsPerLeaf
	}

	type workItem struct {
		first, count int
		nodeIndex    int32
	}

	bounds := make([][2]types.Vec3, len(sc.Primitives))
	centroids := make([]types.Vec3, len(sc.Primitives))
	for i, prim := range sc.Primitives {
		min, max := sc.PrimitiveBounds(prim)
		bounds[i] = [2]types.Vec3{min, max}
		centroids[i] = min.Add(max).Mul(0.5)
	}

	// Sorting reorders primitives together with their cached bounds.
	primSegment := func(first, count int) sort.Interface {
		return &primSorter{
			prims:     sc.Primitives[first : first+count],
			bounds:    bounds[first : first+count],
			centroids: centroids[first : first+count],
		}
	}

	sc.BvhNodes = sc.BvhNodes[:0]
	alloc := func(parent int32, first, count int) int32 {
		node := BvhNode{Left: -1, Right: -1, Parent: parent, FirstPrim: int32(first), PrimCount: int32(count)}
		node.Min = bounds[first][0]
		node.Max = bounds[first][1]
		for i := first + 1; i < first+count; i++ {
			node.Min = types.MinVec3(node.Min, bounds[i][0])
			node.Max = types.MaxVec3(node.Max, bounds[i][1])
		}
		sc.BvhNodes = append(sc.BvhNodes, node)
		return int32(len(sc.BvhNodes) - 1)
	}

	workList := []workItem{{first: 0, count: len(sc.Primitives), nodeIndex: alloc(-1, 0, len(sc.Primitives))}}
	for len(workList) > 0 {
		item := workList[len(workList)-1]
		workList = workList[:len(workList)-1]

		if item.count <= maxPrimsPerLeaf {
			continue
		}

		node := &sc.BvhNodes[item.nodeIndex]
		axis := longestAxis(node.Min, node.Max)
		sorter := primSegment(item.first, item.count).(*primSorter)
		sorter.axis = axis
		sort.Sort(sorter)

		mid := item.count / 2
		left := alloc(item.nodeIndex, item.first, mid)
		right := alloc(item.nodeIndex, item.first+mid, item.count-mid)

		// Re-resolve: alloc may have grown the backing array.
		node = &sc.BvhNodes[item.nodeIndex]
		node.Left = left
		node.Right = right
		node.FirstPrim = 0
		node.PrimCount = 0

		workList = append(workList,
			workItem{first: item.first, count: mid, nodeIndex: left},
			workItem{first: item.first + mid, count: item.count - mid, nodeIndex: right},
		)
	}

	return nil
}

func longestAxis(min, max types.Vec3) int {
	ext := max.Sub(min)
	axis := 0
	if ext[1] > ext[axis] {
		axis = 1
	}
	if ext[2] > ext[axis] {
		axis = 2
	}
	return axis
}

type primSorter struct {
	prims     []Primitive
	bounds    [][2]types.Vec3
	centroids []types.Vec3
	axis      int
}

func (s *primSorter) Len() int { return len(s.prims) }

func (s *primSorter) Less(i, j int) bool {
	return s.centroids[i][s.axis] < s.centroids[j][s.axis]
}

func (s *primSorter) Swap(i, j int) {
	s.prims[i], s.prims[j] = s.prims[j], s.prims[i]
	s.bounds[i], s.bounds[j] = s.bounds[j], s.bounds[i]
	s.centroids[i], s.centroids[j] = s.centroids[j], s.centroids[i]
}
