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

// Point3 is a single 3-D sample (x, y, z) from the sensor's point cloud.
type Point3 struct {
	X, Y, Z float64
}

// Ingest projects each point onto the XY plane and fuses its Z value into
// the matching cell's Bayesian estimator. Points outside the DEM's bounds
// are silently dropped. It returns the number of points that landed
// inside the grid and the number dropped.
func (d *DEM) Ingest(points []Point3) (ingested, dropped int) {
	for _, p := range points {
		c, ok := d.CellAt(p.X, p.Y)
		if !ok {
			dropped++
			continue
		}
		c.addPoint(p.Z)
		ingested++
	}
	return ingested, dropped
}
