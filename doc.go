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

// Package groundseg segments a ground-surface point cloud into coherent
// planar regions. A Pipeline fuses height samples into a Digital Elevation
// Map, builds an 8-connected dissimilarity graph over the map's cells,
// grows components with a Felzenszwalb-Huttenlocher segmentation, refines
// a mixture of planes with EM, and smooths the result with loopy belief
// propagation over the region adjacency graph.
package groundseg
