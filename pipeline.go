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

import "github.com/sirupsen/logrus"

// Config holds every tunable parameter recognized by the pipeline
// (spec.md 4.7).
type Config struct {
	// DEM grid bounds and cell size.
	MinX, MinY, MaxX, MaxY float64
	CellDx, CellDy         float64

	// SensorVariance is sigma_s^2, the known per-point observation
	// variance used by every cell's Bayesian estimator.
	SensorVariance float64

	// SegmentationK is the k in tau(n) = k/n, the adaptive threshold
	// controlling segmentation merge aggressiveness.
	SegmentationK float64
	// MinComponentSize enables the optional post-segmentation merge pass
	// when > 0; it is disabled (0) by default.
	MinComponentSize int

	MLMaxIter int
	MLTol     float64
	Weighted  bool

	BPMaxIter int
	BPTol     float64
	LogDomain bool
	// BPBeta is the Potts smoothness coefficient beta.
	BPBeta float64
}

// DefaultConfig returns the parameter defaults named in spec.md 4.7.
func DefaultConfig() Config {
	return Config{
		MinX: 0, MinY: 0, MaxX: 4, MaxY: 4,
		CellDx: 0.1, CellDy: 0.1,
		SensorVariance:   1e-4,
		SegmentationK:    300,
		MinComponentSize: 0,
		MLMaxIter:        200,
		MLTol:            1e-6,
		Weighted:         false,
		BPMaxIter:        200,
		BPTol:            1e-6,
		LogDomain:        false,
		BPBeta:           1.0,
	}
}

// Validate checks the preconditions in spec.md 7 and returns an
// Invariant error naming the first violation found.
func (c Config) Validate() error {
	const op = "Config.Validate"
	switch {
	case c.MaxX <= c.MinX:
		return newError(Invariant, op, errInvariantf("MaxX (%v) must be greater than MinX (%v)", c.MaxX, c.MinX))
	case c.MaxY <= c.MinY:
		return newError(Invariant, op, errInvariantf("MaxY (%v) must be greater than MinY (%v)", c.MaxY, c.MinY))
	case c.CellDx <= 0:
		return newError(Invariant, op, errInvariantf("CellDx (%v) must be positive", c.CellDx))
	case c.CellDy <= 0:
		return newError(Invariant, op, errInvariantf("CellDy (%v) must be positive", c.CellDy))
	case c.SensorVariance <= 0:
		return newError(Invariant, op, errInvariantf("SensorVariance (%v) must be positive", c.SensorVariance))
	case c.SegmentationK <= 0:
		return newError(Invariant, op, errInvariantf("SegmentationK (%v) must be positive", c.SegmentationK))
	case c.BPMaxIter < 1:
		return newError(Invariant, op, errInvariantf("BPMaxIter (%v) must be at least 1", c.BPMaxIter))
	case c.MLMaxIter < 1:
		return newError(Invariant, op, errInvariantf("MLMaxIter (%v) must be at least 1", c.MLMaxIter))
	}
	return nil
}

// Result is the output of one ProcessPointCloud call (spec.md 6):
// the DEM, the DEM graph, the label map, the surviving mixture
// parameters, and a validity flag.
type Result struct {
	DEM       *DEM
	DEMGraph  *DEMGraph
	Mixture   *Mixture
	Labels    []int // DEM vertex id -> mixture component index, or UnlabeledVertex
	RegionGraph *RegionGraph
	BP        *BPMessages
	Valid     bool
}

// Pipeline sequences DEM construction, segmentation, mixture fitting, and
// belief propagation for repeated calls with a fixed Config (spec.md
// 4.7). A Pipeline owns no state across calls: each ProcessPointCloud
// rebuilds its DEM from scratch.
type Pipeline struct {
	Config
	logger *logrus.Logger
	dem    *DEM
}

// NewPipeline validates cfg and returns a ready-to-use Pipeline. The
// logger receives NONCONVERGENCE warnings (spec.md 7); if nil,
// logrus.StandardLogger() is used.
func NewPipeline(cfg Config, logger *logrus.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dem, err := NewDEM(cfg.MinX, cfg.MinY, cfg.MaxX, cfg.MaxY, cfg.CellDx, cfg.CellDy, cfg.SensorVariance)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Config: cfg, logger: logger, dem: dem}, nil
}

// ProcessPointCloud runs the full pipeline (spec.md 4.7): it rebuilds the
// DEM from points, builds the DEM graph, segments it, fits the planar
// mixture via EM, builds the region graph, runs belief propagation, and
// returns the resulting labels. It never returns EMPTY_INPUT as an
// error; instead Result.Valid is false and Result.Labels is empty.
func (p *Pipeline) ProcessPointCloud(points []Point3) (*Result, error) {
	const op = "ProcessPointCloud"

	p.dem.Reset()
	ingested, _ := p.dem.Ingest(points)
	if ingested == 0 {
		return &Result{DEM: p.dem, Valid: false}, nil
	}

	demGraph := BuildDEMGraph(p.dem)

	seg, err := Segment(demGraph, p.SegmentationK, p.MinComponentSize)
	if err != nil {
		return nil, err
	}

	xs, ys, zs, vertexOf, initLabel := nonEmptyCellSamples(p.dem, seg)
	if len(xs) == 0 {
		return &Result{DEM: p.dem, DEMGraph: demGraph, Valid: false}, nil
	}

	mix, err := FitMixture(p.Config, xs, ys, zs, initLabel, p.logger)
	if err != nil {
		return nil, err
	}

	componentOf := make([]int, p.dem.NumCells())
	for i := range componentOf {
		componentOf[i] = UnlabeledVertex
	}
	for k, c := range mix.Components {
		for _, idx := range c.Members {
			componentOf[vertexOf[idx]] = k
		}
	}

	rg := BuildRegionGraph(demGraph, componentOf, len(mix.Components))

	bp, labels, err := RunBP(p.Config, rg, mix, p.dem, componentOf, p.logger)
	if err != nil {
		return nil, err
	}

	return &Result{
		DEM:         p.dem,
		DEMGraph:    demGraph,
		Mixture:     mix,
		RegionGraph: rg,
		BP:          bp,
		Labels:      labels,
		Valid:       len(mix.Components) > 0,
	}, nil
}

// nonEmptyCellSamples collects the (x, y, z) samples and initial
// segmentation labels for every non-empty DEM cell, in ascending vertex
// id order. vertexOf[i] gives the DEM vertex id of sample i.
func nonEmptyCellSamples(dem *DEM, seg *Segmentation) (xs, ys, zs []float64, vertexOf []int, initLabel []int) {
	nx, ny := dem.Dims()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := dem.CellAtIndex(i, j)
			if c.Empty() {
				continue
			}
			id := dem.VertexID(i, j)
			p := dem.CellCenter(i, j)
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
			zs = append(zs, c.PosteriorMean())
			vertexOf = append(vertexOf, id)
			initLabel = append(initLabel, seg.Label[id])
		}
	}
	return xs, ys, zs, vertexOf, initLabel
}
