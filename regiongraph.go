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

// RegionEdge connects two region-graph vertices (mixture components)
// that touch in the DEM graph. BoundaryCells counts how many DEM edges
// cross this particular component boundary; it is kept only as a
// diagnostic; the binary potential does not weight by it (spec.md 9
// leaves region adjacency unweighted).
type RegionEdge struct {
	U, V          int
	BoundaryCells int
}

// RegionGraph is the adjacency graph over the K surviving mixture
// components, used to run belief propagation for smoothing (spec.md 4.6).
type RegionGraph struct {
	K         int
	Edges     []RegionEdge
	Adjacency [][]int // component index -> neighboring component indices
}

// BuildRegionGraph derives the region adjacency graph from the DEM graph:
// an edge connects two components iff some DEM edge crosses between a
// cell in one and a cell in the other. componentOf maps a DEM vertex id
// to its surviving mixture-component index, or -1 if the vertex belongs
// to no surviving component (e.g. it was pruned or never had a point).
func BuildRegionGraph(demGraph *DEMGraph, componentOf []int, k int) *RegionGraph {
	rg := &RegionGraph{K: k, Adjacency: make([][]int, k)}
	seen := make(map[[2]int]int) // unordered pair -> edge index
	for _, e := range demGraph.Edges {
		cu, cv := componentOf[e.U], componentOf[e.V]
		if cu < 0 || cv < 0 || cu == cv {
			continue
		}
		key := [2]int{cu, cv}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if idx, ok := seen[key]; ok {
			rg.Edges[idx].BoundaryCells++
			continue
		}
		seen[key] = len(rg.Edges)
		rg.Edges = append(rg.Edges, RegionEdge{U: key[0], V: key[1], BoundaryCells: 1})
		rg.Adjacency[key[0]] = append(rg.Adjacency[key[0]], key[1])
		rg.Adjacency[key[1]] = append(rg.Adjacency[key[1]], key[0])
	}
	return rg
}
