/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package groundseg

import (
	"math"
	"sort"
)

// Segmentation is the result of graph segmentation: a mapping from DEM
// vertex id to the id of its component's representative vertex, and the
// members of each surviving component.
type Segmentation struct {
	// Label gives the representative vertex id for every DEM vertex.
	Label []int
	// Components maps a representative vertex id to its sorted member
	// vertex ids.
	Components map[int][]int
}

// Segment runs Felzenszwalb-Huttenlocher graph segmentation over g,
// merging components under the adaptive threshold tau(n) = k/n (spec.md
// 4.4). k must be positive. If minComponentSize > 0, a post-pass merges
// any component smaller than minComponentSize into its cheapest-weight
// neighboring component; this pass is disabled by default (spec.md 4.4,
// 4.9).
func Segment(g *DEMGraph, k float64, minComponentSize int) (*Segmentation, error) {
	const op = "Segment"
	if k <= 0 {
		return nil, newError(Invariant, op, errInvariantf("segmentation k (%v) must be positive", k))
	}

	edges := make([]DEMEdge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Weight != edges[j].Weight {
			return edges[i].Weight < edges[j].Weight
		}
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})

	uf := newUnionFind(g.NumVertices)
	for _, e := range edges {
		ru, rv := uf.find(e.U), uf.find(e.V)
		if ru == rv {
			continue
		}
		tauU := k / float64(uf.size[ru])
		tauV := k / float64(uf.size[rv])
		threshold := uf.intDiff[ru] + tauU
		if other := uf.intDiff[rv] + tauV; other < threshold {
			threshold = other
		}
		if e.Weight <= threshold {
			uf.union(ru, rv, e.Weight)
		}
	}

	if minComponentSize > 0 {
		mergeSmallComponents(g, uf, minComponentSize)
	}

	return labelFromUnionFind(g.NumVertices, uf), nil
}

// mergeSmallComponents implements the optional classical post-pass: any
// component smaller than minSize is merged into the neighboring
// component reachable by its cheapest incident DEM edge.
func mergeSmallComponents(g *DEMGraph, uf *unionFind, minSize int) {
	roots := make(map[int]bool)
	for v := 0; v < len(uf.parent); v++ {
		roots[uf.find(v)] = true
	}
	small := make([]int, 0, len(roots))
	for r := range roots {
		if uf.size[r] < minSize {
			small = append(small, r)
		}
	}
	sort.Ints(small)

	for _, original := range small {
		r := uf.find(original)
		if uf.size[r] >= minSize {
			// Already absorbed by an earlier merge in this pass.
			continue
		}
		bestNeighbor, bestWeight := -1, math.Inf(1)
		for _, e := range g.Edges {
			ru, rv := uf.find(e.U), uf.find(e.V)
			var other int
			switch {
			case ru == r && rv != r:
				other = rv
			case rv == r && ru != r:
				other = ru
			default:
				continue
			}
			if e.Weight < bestWeight {
				bestWeight, bestNeighbor = e.Weight, other
			}
		}
		if bestNeighbor >= 0 {
			uf.union(r, bestNeighbor, bestWeight)
		}
	}
}

func labelFromUnionFind(n int, uf *unionFind) *Segmentation {
	label := make([]int, n)
	components := make(map[int][]int)
	for v := 0; v < n; v++ {
		r := uf.find(v)
		label[v] = r
		components[r] = append(components[r], v)
	}
	return &Segmentation{Label: label, Components: components}
}
