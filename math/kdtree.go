// math/kdtree.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"slices"
)

// KDNode is a node in a 2D KD-tree over the horizontal components of
// LocalPoints. Index records the position of the point in the slice the
// tree was built from, so callers can map results back to their objects.
type KDNode struct {
	Location LocalPoint
	Index    int
	Left     *KDNode
	Right    *KDNode
}

type kdItem struct {
	p   LocalPoint
	idx int
}

// BuildKDTree constructs a balanced KD-tree from a slice of points.
// The tree alternates splitting by east and north at each level.
func BuildKDTree(points []LocalPoint) *KDNode {
	if len(points) == 0 {
		return nil
	}
	items := make([]kdItem, len(points))
	for i, p := range points {
		items[i] = kdItem{p: p, idx: i}
	}
	return buildKDTreeRecursive(items, 0)
}

func axisValue(p LocalPoint, axis int) float64 {
	if axis == 0 {
		return p.East
	}
	return p.North
}

func buildKDTreeRecursive(items []kdItem, depth int) *KDNode {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return &KDNode{Location: items[0].p, Index: items[0].idx}
	}

	// Alternate between east (depth even) and north (depth odd)
	axis := depth % 2

	// Sort by the splitting axis and find median
	slices.SortFunc(items, func(a, b kdItem) int {
		if va, vb := axisValue(a.p, axis), axisValue(b.p, axis); va < vb {
			return -1
		} else if va > vb {
			return 1
		}
		return 0
	})

	median := len(items) / 2

	return &KDNode{
		Location: items[median].p,
		Index:    items[median].idx,
		Left:     buildKDTreeRecursive(items[:median], depth+1),
		Right:    buildKDTreeRecursive(items[median+1:], depth+1),
	}
}

// Nearest returns the index of the point closest to p (horizontally) and
// its distance. It returns -1 for an empty tree.
func (tree *KDNode) Nearest(p LocalPoint) (int, float64) {
	bestIdx, bestDist := -1, gomath.Inf(1)

	var search func(n *KDNode, depth int)
	search = func(n *KDNode, depth int) {
		if n == nil {
			return
		}
		if d := n.Location.Distance2D(p); d < bestDist || (d == bestDist && n.Index < bestIdx) {
			bestIdx, bestDist = n.Index, d
		}

		axis := depth % 2
		delta := axisValue(p, axis) - axisValue(n.Location, axis)
		near, far := n.Left, n.Right
		if delta > 0 {
			near, far = far, near
		}
		search(near, depth+1)
		// Only cross the splitting plane if it's closer than the best so far.
		if Abs(delta) <= bestDist {
			search(far, depth+1)
		}
	}
	search(tree, 0)

	return bestIdx, bestDist
}
