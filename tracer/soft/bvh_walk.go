package soft

import (
	"math"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

// The three states of the stackless BVH walk. The state encodes which link
// was followed to arrive at the current node and therefore which link to
// follow next, so no per-lane traversal stack is needed.
type walkState uint8

const (
	// Just descended into the current node from its parent.
	fromParent walkState = iota
	// Arrived at the current node through the sibling link.
	fromSibling
	// Returning upward out of the current node's subtree.
	fromChild
)

// Traverse the BVH for a ray and invoke leafFn for every leaf whose box the
// ray enters. The near subtree of every interior node is visited before the
// far one; leaf tests must keep the globally nearest hit because box entry
// order is a necessary, not sufficient, nearer-hit ordering.
func walkBvh(nodes []scene.BvhNode, r ray, leafFn func(node *scene.BvhNode)) {
	walkBvhNodes(nodes, r, func(nodeIndex int32) {
		leafFn(&nodes[nodeIndex])
	})
}

// The walk proper, exposed on node indices so tests can assert traversal
// order against hand-built trees.
func walkBvhNodes(nodes []scene.BvhNode, r ray, visitLeaf func(nodeIndex int32)) {
	if len(nodes) == 0 {
		return
	}

	invDir := types.XYZ(1/r.dir[0], 1/r.dir[1], 1/r.dir[2])

	if nodes[0].IsLeaf() {
		// Degenerate single-node tree; there is no child to start from.
		if rayHitsBox(nodes[0].Min, nodes[0].Max, r.origin, invDir) {
			visitLeaf(0)
		}
		return
	}

	// Start at the near child of the root as if having just arrived from it.
	curr := nearChildOf(nodes, 0, r.origin)
	state := fromParent

	for {
		switch state {
		case fromParent, fromSibling:
			node := &nodes[curr]
			if rayHitsBox(node.Min, node.Max, r.origin, invDir) {
				if !node.IsLeaf() {
					curr = nearChildOf(nodes, curr, r.origin)
					state = fromParent
					continue
				}
				visitLeaf(curr)
			}
			// Box missed or leaf fully processed: advance laterally when we
			// came from the parent, upward when we came from the sibling.
			if state == fromParent {
				curr = siblingOf(nodes, curr)
				state = fromSibling
			} else {
				curr = node.Parent
				state = fromChild
			}

		case fromChild:
			if curr == 0 {
				return
			}
			parent := nodes[curr].Parent
			if curr == nearChildOf(nodes, parent, r.origin) {
				// The far subtree is still pending.
				curr = siblingOf(nodes, curr)
				state = fromSibling
			} else {
				curr = parent
			}
		}
	}
}

// The child of the given interior node whose box center lies closer to the
// ray origin.
func nearChildOf(nodes []scene.BvhNode, parent int32, origin types.Vec3) int32 {
	p := &nodes[parent]
	if boxCenterDistSq(&nodes[p.Left], origin) <= boxCenterDistSq(&nodes[p.Right], origin) {
		return p.Left
	}
	return p.Right
}

func siblingOf(nodes []scene.BvhNode, curr int32) int32 {
	p := &nodes[nodes[curr].Parent]
	if p.Left == curr {
		return p.Right
	}
	return p.Left
}

func boxCenterDistSq(n *scene.BvhNode, origin types.Vec3) float32 {
	center := n.Min.Add(n.Max).Mul(0.5).Sub(origin)
	return center.Dot(center)
}

// Slab test against the [0, +inf) ray interval.
func rayHitsBox(min, max, ro, invDir types.Vec3) bool {
	tNear := float32(0)
	tFar := float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		t0 := (min[axis] - ro[axis]) * invDir[axis]
		t1 := (max[axis] - ro[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}
