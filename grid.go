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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// DEM is a Digital Elevation Map: a dense, row-major grid of Cell height
// estimators over an immutable rectangular region. Bounds are half-open:
// a world point (x, y) is in range iff minX <= x < maxX and
// minY <= y < maxY.
type DEM struct {
	minX, minY, maxX, maxY float64
	dx, dy                 float64
	nx, ny                 int
	sigma2Sensor           float64
	kappa0, mu0            float64

	cells []Cell
}

// NewDEM creates a DEM spanning [minX, maxX) x [minY, maxY) with cells of
// size dx by dy, fusing observations under a known sensor variance
// sigma2Sensor. It fails with an Invariant error if maxX <= minX,
// maxY <= minY, dx <= 0, dy <= 0, or sigma2Sensor <= 0.
func NewDEM(minX, minY, maxX, maxY, dx, dy, sigma2Sensor float64) (*DEM, error) {
	const op = "NewDEM"
	switch {
	case maxX <= minX:
		return nil, newError(Invariant, op, errInvariantf("maxDEM.X (%v) must be greater than minDEM.X (%v)", maxX, minX))
	case maxY <= minY:
		return nil, newError(Invariant, op, errInvariantf("maxDEM.Y (%v) must be greater than minDEM.Y (%v)", maxY, minY))
	case dx <= 0:
		return nil, newError(Invariant, op, errInvariantf("cell size dx (%v) must be positive", dx))
	case dy <= 0:
		return nil, newError(Invariant, op, errInvariantf("cell size dy (%v) must be positive", dy))
	case sigma2Sensor <= 0:
		return nil, newError(Invariant, op, errInvariantf("sensor variance (%v) must be positive", sigma2Sensor))
	}
	nx := int(math.Ceil((maxX - minX) / dx))
	ny := int(math.Ceil((maxY - minY) / dy))
	d := &DEM{
		minX: minX, minY: minY, maxX: maxX, maxY: maxY,
		dx: dx, dy: dy, nx: nx, ny: ny,
		sigma2Sensor: sigma2Sensor,
	}
	d.cells = make([]Cell, nx*ny)
	d.resetCells()
	return d, nil
}

func (d *DEM) resetCells() {
	for i := range d.cells {
		d.cells[i] = newCell(d.sigma2Sensor, d.kappa0, d.mu0)
	}
}

// Reset clears every cell back to its empty prior, so the DEM can be
// reused for a new point cloud without reallocating the backing array.
func (d *DEM) Reset() { d.resetCells() }

// Dims returns the grid dimensions (Nx, Ny).
func (d *DEM) Dims() (nx, ny int) { return d.nx, d.ny }

// NumCells returns Nx*Ny, the total number of grid cells (empty or not).
func (d *DEM) NumCells() int { return len(d.cells) }

// Bounds returns the DEM's immutable world-space extent.
func (d *DEM) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: d.minX, Y: d.minY},
		Max: geom.Point{X: d.maxX, Y: d.maxY},
	}
}

// Contains reports whether (x, y) falls within the DEM's half-open
// bounds.
func (d *DEM) Contains(x, y float64) bool {
	return x >= d.minX && x < d.maxX && y >= d.minY && y < d.maxY
}

// Index converts a world point to grid indices (i, j). ok is false if the
// point is out of bounds.
func (d *DEM) Index(x, y float64) (i, j int, ok bool) {
	if !d.Contains(x, y) {
		return 0, 0, false
	}
	i = int((x - d.minX) / d.dx)
	j = int((y - d.minY) / d.dy)
	// Guard against floating-point rounding pushing the index out of
	// range for points just below maxX or maxY.
	if i >= d.nx {
		i = d.nx - 1
	}
	if j >= d.ny {
		j = d.ny - 1
	}
	return i, j, true
}

// vertexID maps grid indices to a dense, row-major vertex id in
// [0, Nx*Ny).
func (d *DEM) vertexID(i, j int) int { return j*d.nx + i }

// VertexID returns the dense vertex id for the cell at grid indices
// (i, j), the same id used by DEMGraph and the label map.
func (d *DEM) VertexID(i, j int) int { return d.vertexID(i, j) }

// IndexOf returns the grid indices corresponding to a vertex id.
func (d *DEM) IndexOf(id int) (i, j int) {
	return id % d.nx, id / d.nx
}

// CellAtIndex returns a mutable pointer to the cell at grid indices
// (i, j).
func (d *DEM) CellAtIndex(i, j int) *Cell {
	return &d.cells[d.vertexID(i, j)]
}

// CellAt returns a mutable pointer to the cell containing world point
// (x, y), along with whether the point was in range.
func (d *DEM) CellAt(x, y float64) (*Cell, bool) {
	i, j, ok := d.Index(x, y)
	if !ok {
		return nil, false
	}
	return d.CellAtIndex(i, j), true
}

// CellCenter returns the world-space center of the cell at (i, j).
func (d *DEM) CellCenter(i, j int) geom.Point {
	return geom.Point{
		X: d.minX + (float64(i)+0.5)*d.dx,
		Y: d.minY + (float64(j)+0.5)*d.dy,
	}
}

// CellBounds returns the world-space bounding box of the cell at (i, j).
func (d *DEM) CellBounds(i, j int) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: d.minX + float64(i)*d.dx, Y: d.minY + float64(j)*d.dy},
		Max: geom.Point{X: d.minX + float64(i+1)*d.dx, Y: d.minY + float64(j+1)*d.dy},
	}
}

// Iterate calls fn once for every grid cell, in ascending vertex-id order,
// with a read-only view of the cell.
func (d *DEM) Iterate(fn func(id int, c *Cell)) {
	for id := range d.cells {
		fn(id, &d.cells[id])
	}
}

// HeightGrid returns the grid of posterior mean heights as a dense 2-D
// array shaped (Ny, Nx), the same dense-array convention the teacher uses
// for gridded model output. Empty cells report their prior mean.
func (d *DEM) HeightGrid() *sparse.DenseArray {
	out := sparse.ZerosDense(d.ny, d.nx)
	for j := 0; j < d.ny; j++ {
		for i := 0; i < d.nx; i++ {
			out.Set(d.cells[d.vertexID(i, j)].PosteriorMean(), j, i)
		}
	}
	return out
}

// CountGrid returns the grid of per-cell point counts as a dense 2-D
// array shaped (Ny, Nx).
func (d *DEM) CountGrid() *sparse.DenseArray {
	out := sparse.ZerosDense(d.ny, d.nx)
	for j := 0; j < d.ny; j++ {
		for i := 0; i < d.nx; i++ {
			out.Set(float64(d.cells[d.vertexID(i, j)].Count()), j, i)
		}
	}
	return out
}
