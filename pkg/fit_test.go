package aclgad

import (
	"errors"
	"math"
	"testing"
)

func gaussianCharge(geometry []GeometryRecord, hit Vec3, sigma float64) []ChargeRecord {
	charge := make([]ChargeRecord, len(geometry))
	for k, g := range geometry {
		dx := g.PixelX - hit.X
		dy := g.PixelY - hit.Y
		charge[k] = ChargeRecord{
			Fraction: math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma)),
			Valid:    true,
		}
	}
	return charge
}

func TestGaussFitEvaluator_SyntheticGaussian(t *testing.T) {
	det := testConfig().Detector()
	hit := Vec3{X: 0.03, Y: -0.02}
	geometry := NewNeighborhoodGeometry(det, 4).CalcNeighborhoodGridAngles(hit, 10, 10)
	charge := gaussianCharge(geometry, hit, 0.2)

	evaluator := NewGaussFitEvaluator(0.05)
	fits, err := evaluator.Fit(4, geometry, charge)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(fits) != 2 || fits[0].Orientation != FIT_ROW || fits[1].Orientation != FIT_COLUMN {
		t.Fatalf("unexpected fits %+v", fits)
	}
	centers := []float64{hit.X, hit.Y}
	for k, f := range fits {
		if !f.Success || f.Model != FIT_GAUSS {
			t.Fatalf("%v fit failed: %+v", f.Orientation, f)
		}
		if !nearly(f.Center, centers[k], 1e-8) {
			t.Fatalf("%v center %g, want %g", f.Orientation, f.Center, centers[k])
		}
		if !nearly(f.Width, 0.2, 1e-8) {
			t.Fatalf("%v width %g, want 0.2", f.Orientation, f.Width)
		}
		if f.Chi2Red > 1e-12 {
			t.Fatalf("%v chi2red %g on exact data", f.Orientation, f.Chi2Red)
		}
		if f.DOF != 6 {
			t.Fatalf("%v dof %d, want 6", f.Orientation, f.DOF)
		}
	}

	quality, err := evaluator.Evaluate(4, geometry, charge)
	if err != nil || quality > 1e-12 {
		t.Fatalf("quality %g, err %v", quality, err)
	}
}

func TestGaussFitEvaluator_Failures(t *testing.T) {
	det := testConfig().Detector()
	hit := Vec3{X: 0.03}
	evaluator := NewGaussFitEvaluator(0.05)

	small := NewNeighborhoodGeometry(det, 1).CalcNeighborhoodGridAngles(hit, 10, 10)
	if _, err := evaluator.Evaluate(1, small, gaussianCharge(small, hit, 0.2)); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("3 points: err = %v, want ErrInsufficientPoints", err)
	}

	geometry := NewNeighborhoodGeometry(det, 3).CalcNeighborhoodGridAngles(hit, 10, 10)
	if _, err := evaluator.Evaluate(4, geometry, gaussianCharge(geometry, hit, 0.2)); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("radius mismatch: err = %v, want ErrInsufficientPoints", err)
	}

	// charge growing away from the hit has no peak
	valley := make([]ChargeRecord, len(geometry))
	for k, g := range geometry {
		valley[k] = ChargeRecord{Fraction: 1 + g.Distance*g.Distance*100, Valid: true}
	}
	if _, err := evaluator.Evaluate(3, geometry, valley); !errors.Is(err, ErrFitDiverged) {
		t.Fatalf("valley: err = %v, want ErrFitDiverged", err)
	}
}
