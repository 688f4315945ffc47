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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// MixtureComponent is one plane of the mixture: a mixture weight, plane
// parameters (a, b, c) such that z = a + b*x + c*y, and a residual
// variance.
type MixtureComponent struct {
	Pi     float64
	A, B, C float64
	Sigma2 float64

	// Members lists the indices, into the points given to FitMixture, of
	// this component's initial segment (kept so the region graph and
	// final labeling can recover which original segmentation component a
	// mixture component grew from).
	Members []int

	// id is a stable identifier assigned once at initialization and
	// carried forward by mStep regardless of how many sibling components
	// get pruned, so the convergence check can compare a component's
	// plane parameters across iterations even after the slice reorders.
	id int
}

// Mixture is the fitted mixture-of-planes model (spec.md 4.5): K
// surviving components, each plane's parameters, and the point-wise
// responsibilities.
type Mixture struct {
	Components []MixtureComponent

	// Responsibilities[i][k] is r_{i,k} for point i (in the order given
	// to FitMixture) and surviving component k.
	Responsibilities [][]float64

	Iterations int
	Converged  bool
}

const (
	sigma2Floor        = 1e-9
	responsibilityFloor = 3.0
)

// FitMixture alternates E-step responsibility computation with M-step
// weighted (or hard-assignment) linear regression, per component, over
// plane parameters (spec.md 4.5). xs, ys, zs are the coordinates and
// posterior mean heights of every non-empty DEM cell; initLabel gives,
// for each point, the representative vertex id of its initial
// segmentation component (spec.md 4.4's Segmentation.Label restricted to
// non-empty cells).
func FitMixture(cfg Config, xs, ys, zs []float64, initLabel []int, logger *logrus.Logger) (*Mixture, error) {
	const op = "FitMixture"
	n := len(xs)
	if n == 0 {
		return nil, newError(EmptyInput, op, nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	groups := groupByLabel(initLabel)
	comps := make([]MixtureComponent, 0, len(groups))
	nextID := 0
	for _, members := range groups {
		weights := make([]float64, n)
		for _, i := range members {
			weights[i] = 1
		}
		fit, err := fitPlane(xs, ys, zs, weights)
		if err != nil {
			// An under-determined initial segment (fewer than 3 distinct
			// support points, e.g. a single occupied DEM cell) cannot seed
			// a tilted plane; fall back to a degenerate flat plane at the
			// group's mean height rather than discarding the group
			// (spec.md 7's single-cell boundary case).
			fit = degeneratePlaneFit(zs, weights)
		}
		if fit.Sigma2 < sigma2Floor {
			fit.Sigma2 = sigma2Floor
		}
		comps = append(comps, MixtureComponent{
			Pi: float64(len(members)) / float64(n),
			A: fit.A, B: fit.B, C: fit.C, Sigma2: fit.Sigma2,
			Members: members,
			id:      nextID,
		})
		nextID++
	}
	if len(comps) == 0 {
		return nil, newError(NumericSingular, op, errInvariantf("no segmentation component yielded an invertible initial plane fit"))
	}
	normalizeWeights(comps)

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, len(comps))
	}

	prevLogLik := math.Inf(-1)
	converged := false
	iter := 0
	for ; iter < cfg.MLMaxIter; iter++ {
		logLik := eStep(comps, xs, ys, zs, resp)

		newComps, singularRetry, err := mStep(cfg, comps, xs, ys, zs, resp)
		if err != nil {
			return nil, err
		}
		if pruned := len(comps) - len(newComps); pruned > 0 {
			logger.WithFields(logrus.Fields{
				"op":        op,
				"iteration": iter,
				"pruned":    pruned,
			}).Warn("groundseg: mixture components pruned")
		}
		if singularRetry {
			// One surviving component's normal equations were singular;
			// it has already been pruned from newComps. Re-run this
			// iteration's E-step against the pruned set before checking
			// convergence, per the recovery policy in spec.md 7.
			comps = newComps
			if len(comps) == 0 {
				return nil, newError(NumericSingular, op, errInvariantf("every mixture component was pruned"))
			}
			resp = make([][]float64, n)
			for i := range resp {
				resp[i] = make([]float64, len(comps))
			}
			continue
		}

		prevByID := make(map[int]MixtureComponent, len(comps))
		for _, c := range comps {
			prevByID[c.id] = c
		}
		maxThetaDelta := 0.0
		for _, c := range newComps {
			prev, ok := prevByID[c.id]
			if !ok {
				// c is not new here (mStep only ever drops components),
				// but guard anyway rather than assume alignment.
				continue
			}
			maxThetaDelta = math.Max(maxThetaDelta, math.Abs(c.A-prev.A))
			maxThetaDelta = math.Max(maxThetaDelta, math.Abs(c.B-prev.B))
			maxThetaDelta = math.Max(maxThetaDelta, math.Abs(c.C-prev.C))
		}
		comps = newComps
		if len(comps) == 0 {
			return nil, newError(NumericSingular, op, errInvariantf("every mixture component was pruned"))
		}

		deltaLogLik := math.Abs(logLik - prevLogLik)
		prevLogLik = logLik
		if deltaLogLik < cfg.MLTol && maxThetaDelta < cfg.MLTol {
			converged = true
			iter++
			break
		}
		if len(resp[0]) != len(comps) {
			resp = make([][]float64, n)
			for i := range resp {
				resp[i] = make([]float64, len(comps))
			}
		}
	}
	if !converged {
		logger.WithFields(logrus.Fields{
			"op":         op,
			"iterations": iter,
			"tolerance":  cfg.MLTol,
		}).Warn("groundseg: NONCONVERGENCE: mixture EM hit its iteration cap")
	}

	// Final E-step against the converged (or capped-out) parameters so
	// Responsibilities reflects the returned Components.
	eStep(comps, xs, ys, zs, resp)

	return &Mixture{Components: comps, Responsibilities: resp, Iterations: iter, Converged: converged}, nil
}

func groupByLabel(label []int) [][]int {
	groups := make(map[int][]int)
	order := make([]int, 0)
	for i, l := range label {
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		groups[l] = append(groups[l], i)
	}
	out := make([][]int, 0, len(order))
	for _, l := range order {
		out = append(out, groups[l])
	}
	return out
}

func normalizeWeights(comps []MixtureComponent) {
	sum := 0.0
	for _, c := range comps {
		sum += c.Pi
	}
	if sum == 0 {
		return
	}
	for i := range comps {
		comps[i].Pi /= sum
	}
}

func gaussianLogPDF(z, mean, variance float64) float64 {
	return -0.5*math.Log(2*math.Pi*variance) - (z-mean)*(z-mean)/(2*variance)
}

// eStep fills resp with normalized responsibilities and returns the
// total log-likelihood of the data under comps.
func eStep(comps []MixtureComponent, xs, ys, zs []float64, resp [][]float64) float64 {
	logLik := 0.0
	logw := make([]float64, len(comps))
	for i := range xs {
		for k, c := range comps {
			mean := c.A + c.B*xs[i] + c.C*ys[i]
			logw[k] = math.Log(c.Pi) + gaussianLogPDF(zs[i], mean, c.Sigma2)
		}
		logZ := floats.LogSumExp(logw)
		logLik += logZ
		for k := range comps {
			resp[i][k] = math.Exp(logw[k] - logZ)
		}
	}
	return logLik
}

// mStep performs the weighted (or hard-assignment) M-step update and
// prunes any component whose total responsibility falls below
// responsibilityFloor. A component with fewer than 3 distinct support
// points is refit as a flat plane at its weighted mean height. If a
// component's normal equations are singular, that component alone is
// pruned and singularRetry is reported true so the caller can redo the
// current EM iteration against the reduced set, per the NUMERIC_SINGULAR
// recovery policy.
func mStep(cfg Config, comps []MixtureComponent, xs, ys, zs []float64, resp [][]float64) ([]MixtureComponent, bool, error) {
	const op = "mStep"
	n := len(xs)
	out := make([]MixtureComponent, 0, len(comps))
	singularRetry := false
	for k, c := range comps {
		weights := make([]float64, n)
		total := 0.0
		if cfg.Weighted {
			for i := 0; i < n; i++ {
				weights[i] = resp[i][k]
				total += weights[i]
			}
		} else {
			for i := 0; i < n; i++ {
				if argmax(resp[i]) == k {
					weights[i] = 1
					total++
				}
			}
		}
		// Scale the floor down when there are fewer points than the floor
		// itself (e.g. the single-cell case in spec.md 7): otherwise the
		// sole component of a 1- or 2-point input would always be pruned,
		// leaving zero components and a spurious NUMERIC_SINGULAR error.
		if floor := math.Min(responsibilityFloor, float64(n)); total < floor {
			continue
		}
		// Fewer than 3 distinct support points (e.g. the single-cell case)
		// cannot determine a tilted plane; keep the component as a flat
		// plane at its weighted mean height, as the initial fit does.
		support := make(map[[2]float64]bool)
		for i := 0; i < n; i++ {
			if weights[i] != 0 {
				support[[2]float64{xs[i], ys[i]}] = true
			}
		}
		var fit planeFit
		var err error
		if len(support) < 3 {
			fit = degeneratePlaneFit(zs, weights)
		} else {
			fit, err = fitPlane(xs, ys, zs, weights)
		}
		if err != nil {
			if singularRetry {
				// A second singularity in the same pass is not
				// recoverable by pruning alone.
				return nil, false, newError(NumericSingular, op, err)
			}
			singularRetry = true
			continue
		}
		if fit.Sigma2 < sigma2Floor {
			fit.Sigma2 = sigma2Floor
		}
		out = append(out, MixtureComponent{
			Pi: total / float64(n),
			A: fit.A, B: fit.B, C: fit.C, Sigma2: fit.Sigma2,
			Members: c.Members,
			id:      c.id,
		})
	}
	normalizeWeights(out)
	return out, singularRetry, nil
}

func argmax(xs []float64) int {
	best, bestI := math.Inf(-1), 0
	for i, x := range xs {
		if x > best {
			best, bestI = x, i
		}
	}
	return bestI
}
