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
	"bytes"
	"encoding/gob"
)

// demGobForm is the exported, flat representation of a DEM used for
// GobEncode/GobDecode. It replaces the deep virtual/multiple-inheritance
// Serializable hierarchies in the source design with a single explicit
// capability: encode to and decode from a byte stream (spec.md 9).
type demGobForm struct {
	MinX, MinY, MaxX, MaxY float64
	Dx, Dy                 float64
	Nx, Ny                 int
	Sigma2Sensor           float64
	Kappa0, Mu0            float64
	CellN                  []int
	CellSum                []float64
}

// GobEncode implements gob.GobEncoder for DEM.
func (d *DEM) GobEncode() ([]byte, error) {
	f := demGobForm{
		MinX: d.minX, MinY: d.minY, MaxX: d.maxX, MaxY: d.maxY,
		Dx: d.dx, Dy: d.dy, Nx: d.nx, Ny: d.ny,
		Sigma2Sensor: d.sigma2Sensor, Kappa0: d.kappa0, Mu0: d.mu0,
		CellN:   make([]int, len(d.cells)),
		CellSum: make([]float64, len(d.cells)),
	}
	for i, c := range d.cells {
		f.CellN[i] = c.n
		f.CellSum[i] = c.sum
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, newError(Invariant, "DEM.GobEncode", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder for DEM.
func (d *DEM) GobDecode(data []byte) error {
	var f demGobForm
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return newError(Invariant, "DEM.GobDecode", err)
	}
	d.minX, d.minY, d.maxX, d.maxY = f.MinX, f.MinY, f.MaxX, f.MaxY
	d.dx, d.dy, d.nx, d.ny = f.Dx, f.Dy, f.Nx, f.Ny
	d.sigma2Sensor, d.kappa0, d.mu0 = f.Sigma2Sensor, f.Kappa0, f.Mu0
	d.cells = make([]Cell, len(f.CellN))
	for i := range d.cells {
		d.cells[i] = newCell(d.sigma2Sensor, d.kappa0, d.mu0)
		d.cells[i].n = f.CellN[i]
		d.cells[i].sum = f.CellSum[i]
	}
	return nil
}

// resultGobForm is the flat representation of a Result used for
// GobEncode/GobDecode. DEMGraph, RegionGraph, and BP are not carried:
// they are cheaply rebuilt from the DEM and Mixture, and the core does
// not mandate a wire format for them (spec.md 6).
type resultGobForm struct {
	DEM        *DEM
	Mixture    *Mixture
	Labels     []int
	Valid      bool
}

// GobEncode implements gob.GobEncoder for Result.
func (r *Result) GobEncode() ([]byte, error) {
	f := resultGobForm{DEM: r.DEM, Mixture: r.Mixture, Labels: r.Labels, Valid: r.Valid}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, newError(Invariant, "Result.GobEncode", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder for Result.
func (r *Result) GobDecode(data []byte) error {
	var f resultGobForm
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return newError(Invariant, "Result.GobDecode", err)
	}
	r.DEM, r.Mixture, r.Labels, r.Valid = f.DEM, f.Mixture, f.Labels, f.Valid
	return nil
}
