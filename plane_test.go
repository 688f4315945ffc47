package groundseg

import (
	"math"
	"testing"
)

func allOnes(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestFitPlaneExactFlatPlane(t *testing.T) {
	xs := []float64{0, 1, 0, 1, 2}
	ys := []float64{0, 0, 1, 1, 2}
	zs := []float64{5, 5, 5, 5, 5}
	fit, err := fitPlane(xs, ys, zs, allOnes(len(xs)))
	if err != nil {
		t.Fatalf("fitPlane: %v", err)
	}
	if math.Abs(fit.A-5) > 1e-9 || math.Abs(fit.B) > 1e-9 || math.Abs(fit.C) > 1e-9 {
		t.Errorf("fit = %+v, want a=5, b=0, c=0", fit)
	}
	if fit.Sigma2 > 1e-9 {
		t.Errorf("Sigma2 = %v, want ~0 for an exact fit", fit.Sigma2)
	}
}

func TestFitPlaneExactTiltedPlane(t *testing.T) {
	xs := []float64{0, 1, 0, 1, 2, 2}
	ys := []float64{0, 0, 1, 1, 0, 1}
	zs := make([]float64, len(xs))
	const a, b, c = 1.0, 2.0, -0.5
	for i := range xs {
		zs[i] = a + b*xs[i] + c*ys[i]
	}
	fit, err := fitPlane(xs, ys, zs, allOnes(len(xs)))
	if err != nil {
		t.Fatalf("fitPlane: %v", err)
	}
	if math.Abs(fit.A-a) > 1e-9 || math.Abs(fit.B-b) > 1e-9 || math.Abs(fit.C-c) > 1e-9 {
		t.Errorf("fit = %+v, want a=%v b=%v c=%v", fit, a, b, c)
	}
}

func TestFitPlaneSingularUnderDetermined(t *testing.T) {
	// A single point cannot determine a 3-parameter plane.
	_, err := fitPlane([]float64{0}, []float64{0}, []float64{1}, []float64{1})
	if !IsKind(err, NumericSingular) {
		t.Fatalf("expected NumericSingular for an under-determined fit, got %v", err)
	}
}

func TestFitPlaneZeroWeightsExcluded(t *testing.T) {
	xs := []float64{0, 1, 0, 1, 5}
	ys := []float64{0, 0, 1, 1, 5}
	zs := []float64{0, 1, 1, 2, 1000} // the last point is an outlier
	weights := []float64{1, 1, 1, 1, 0}
	fit, err := fitPlane(xs, ys, zs, weights)
	if err != nil {
		t.Fatalf("fitPlane: %v", err)
	}
	if math.Abs(fit.A) > 1e-9 || math.Abs(fit.B-1) > 1e-9 || math.Abs(fit.C-1) > 1e-9 {
		t.Errorf("fit = %+v, want the zero-weighted outlier to have no influence", fit)
	}
}
