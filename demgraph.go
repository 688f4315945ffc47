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

import "math"

// DEMEdge connects two DEM vertices with a standardized posterior-mean
// dissimilarity weight.
type DEMEdge struct {
	U, V   int
	Weight float64
}

// DEMGraph is the 8-connected weighted graph over non-empty DEM cells.
// Vertex ids are the dense DEM vertex ids (see DEM.VertexID); vertices
// without any non-empty 8-neighbor remain isolated (present in
// NumVertices but with no incident edge).
type DEMGraph struct {
	NumVertices int
	Edges       []DEMEdge

	// Adjacency maps a vertex id to the indices into Edges of its
	// incident edges, in the order they were discovered.
	Adjacency [][]int
}

// forwardNeighborOffsets enumerates, for a cell scanned in row-major
// (i increasing fastest, then j) order, the four 8-connected neighbor
// directions that have not yet been visited. Combined with the scan
// order this produces every unordered 8-neighbor pair exactly once.
var forwardNeighborOffsets = [4][2]int{
	{1, 0},  // east
	{1, 1},  // northeast
	{0, 1},  // north
	{-1, 1}, // northwest
}

// BuildDEMGraph constructs the 8-connected DEM graph described in
// spec.md 4.3: an edge is created between every pair of non-empty
// 8-neighbor cells, weighted by the standardized difference of their
// posterior means. Self-loops are never produced and each unordered pair
// appears once.
func BuildDEMGraph(d *DEM) *DEMGraph {
	g := &DEMGraph{
		NumVertices: d.NumCells(),
		Adjacency:   make([][]int, d.NumCells()),
	}
	for j := 0; j < d.ny; j++ {
		for i := 0; i < d.nx; i++ {
			u := d.vertexID(i, j)
			cu := d.CellAtIndex(i, j)
			if cu.Empty() {
				continue
			}
			for _, off := range forwardNeighborOffsets {
				ni, nj := i+off[0], j+off[1]
				if ni < 0 || ni >= d.nx || nj < 0 || nj >= d.ny {
					continue
				}
				v := d.vertexID(ni, nj)
				cv := d.CellAtIndex(ni, nj)
				if cv.Empty() {
					continue
				}
				w := edgeWeight(cu, cv)
				idx := len(g.Edges)
				g.Edges = append(g.Edges, DEMEdge{U: u, V: v, Weight: w})
				g.Adjacency[u] = append(g.Adjacency[u], idx)
				g.Adjacency[v] = append(g.Adjacency[v], idx)
			}
		}
	}
	return g
}

// edgeWeight is the standardized posterior-mean difference between two
// cells, spec.md's w(u,v) = |mu_u - mu_v| / sqrt(sigma2_u + sigma2_v).
func edgeWeight(u, v *Cell) float64 {
	dMu := u.PosteriorMean() - v.PosteriorMean()
	denom := math.Sqrt(u.PosteriorVariance() + v.PosteriorVariance())
	if denom == 0 {
		if dMu == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(dMu) / denom
}

// Other returns the endpoint of edge e that is not v.
func (e DEMEdge) Other(v int) int {
	if e.U == v {
		return e.V
	}
	return e.U
}
