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
	"gonum.org/v1/gonum/mat"
)

// planeFit holds the parameters of a fitted plane z = a + b*x + c*y and
// its residual variance.
type planeFit struct {
	A, B, C float64
	Sigma2  float64
}

// fitPlane solves the weighted normal equations (X^T W X) theta = X^T W z
// for theta = (a, b, c), where X's rows are (1, x_i, y_i) and
// W = diag(weights). It returns NUMERIC_SINGULAR if X^T W X is not
// invertible.
func fitPlane(xs, ys, zs, weights []float64) (planeFit, error) {
	const op = "fitPlane"
	n := len(xs)

	xtwx := mat.NewDense(3, 3, nil)
	xtwz := make([]float64, 3)

	for i := 0; i < n; i++ {
		w := weights[i]
		if w == 0 {
			continue
		}
		row := [3]float64{1, xs[i], ys[i]}
		for a := 0; a < 3; a++ {
			xtwz[a] += w * row[a] * zs[i]
			for b := 0; b < 3; b++ {
				xtwx.Set(a, b, xtwx.At(a, b)+w*row[a]*row[b])
			}
		}
	}

	var theta mat.VecDense
	rhs := mat.NewVecDense(3, xtwz)
	if err := theta.SolveVec(xtwx, rhs); err != nil {
		return planeFit{}, newError(NumericSingular, op, err)
	}

	fit := planeFit{A: theta.AtVec(0), B: theta.AtVec(1), C: theta.AtVec(2)}

	var wSum, wResidSq float64
	for i := 0; i < n; i++ {
		w := weights[i]
		if w == 0 {
			continue
		}
		pred := fit.A + fit.B*xs[i] + fit.C*ys[i]
		resid := zs[i] - pred
		wResidSq += w * resid * resid
		wSum += w
	}
	if wSum > 0 {
		fit.Sigma2 = wResidSq / wSum
	}
	return fit, nil
}

// degeneratePlaneFit is the fallback for a group with fewer than 3
// distinct support points, for which the tilted-plane normal equations
// are always singular: a flat plane (B = C = 0) at the group's weighted
// mean height. Sigma2 is left at 0; callers apply the sigma2 floor.
func degeneratePlaneFit(zs, weights []float64) planeFit {
	var wSum, wz float64
	for i, w := range weights {
		wSum += w
		wz += w * zs[i]
	}
	if wSum == 0 {
		return planeFit{}
	}
	return planeFit{A: wz / wSum}
}
