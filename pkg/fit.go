package aclgad

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type FitModel int

const (
	FIT_GAUSS FitModel = iota
	FIT_LORENTZ
	FIT_POWER_LORENTZ
)

func (m FitModel) String() string {
	switch m {
	case FIT_GAUSS:
		return "gauss"
	case FIT_LORENTZ:
		return "lorentz"
	case FIT_POWER_LORENTZ:
		return "power_lorentz"
	default:
		return "unknown"
	}
}

type FitOrientation int

const (
	FIT_ROW FitOrientation = iota
	FIT_COLUMN
	FIT_MAIN_DIAGONAL
	FIT_SECONDARY_DIAGONAL
	FIT_SURFACE
)

func (o FitOrientation) String() string {
	switch o {
	case FIT_ROW:
		return "row"
	case FIT_COLUMN:
		return "column"
	case FIT_MAIN_DIAGONAL:
		return "main_diag"
	case FIT_SECONDARY_DIAGONAL:
		return "sec_diag"
	case FIT_SURFACE:
		return "surface"
	default:
		return "unknown"
	}
}

// FitResult is the outcome of one fit of the charge profile, identified by
// model and orientation. Width is sigma for Gauss and gamma for Lorentz.
type FitResult struct {
	Model       FitModel
	Orientation FitOrientation
	Center      float64
	Width       float64
	Amplitude   float64
	Offset      float64
	CenterErr   float64
	Chi2Red     float64
	DOF         int
	Success     bool
}

// FitEvaluator scores the charge distribution of one candidate radius. An
// error means no score could be produced for that radius.
type FitEvaluator interface {
	Evaluate(radius int, geometry []GeometryRecord, charge []ChargeRecord) (float64, error)
}

// FitReporter is implemented by evaluators that can also publish the
// individual fits behind a score.
type FitReporter interface {
	Fit(radius int, geometry []GeometryRecord, charge []ChargeRecord) ([]FitResult, error)
}

// GaussFitEvaluator fits a Gaussian to the central row and column of the
// charge fractions. The quality is the mean reduced chi-square.
type GaussFitEvaluator struct {
	// Uncertainty of every point as a fraction of the largest charge.
	ErrorFraction float64
}

func NewGaussFitEvaluator(errorFraction float64) *GaussFitEvaluator {
	return &GaussFitEvaluator{ErrorFraction: errorFraction}
}

func (e *GaussFitEvaluator) Evaluate(radius int, geometry []GeometryRecord, charge []ChargeRecord) (float64, error) {
	fits, err := e.Fit(radius, geometry, charge)
	if err != nil {
		return math.NaN(), err
	}
	chi2 := make([]float64, len(fits))
	for k, f := range fits {
		chi2[k] = f.Chi2Red
	}
	return floats.Sum(chi2) / float64(len(chi2)), nil
}

func (e *GaussFitEvaluator) Fit(radius int, geometry []GeometryRecord, charge []ChargeRecord) ([]FitResult, error) {
	if len(geometry) != len(charge) || len(geometry) != GridSize(radius) {
		return nil, fmt.Errorf("%w: %d geometry and %d charge entries for radius %d",
			ErrInsufficientPoints, len(geometry), len(charge), radius)
	}
	row, err := e.fitLine(geometry, charge, FIT_ROW)
	if err != nil {
		return nil, fmt.Errorf("row fit: %w", err)
	}
	col, err := e.fitLine(geometry, charge, FIT_COLUMN)
	if err != nil {
		return nil, fmt.Errorf("column fit: %w", err)
	}
	return []FitResult{row, col}, nil
}

func (e *GaussFitEvaluator) fitLine(geometry []GeometryRecord, charge []ChargeRecord, orientation FitOrientation) (FitResult, error) {
	result := FitResult{Model: FIT_GAUSS, Orientation: orientation}

	var xs, qs []float64
	for k, g := range geometry {
		if !g.Valid || !charge[k].Valid || !(charge[k].Fraction > 0) {
			continue
		}
		switch orientation {
		case FIT_ROW:
			if g.DJ == 0 {
				xs = append(xs, g.PixelX)
				qs = append(qs, charge[k].Fraction)
			}
		case FIT_COLUMN:
			if g.DI == 0 {
				xs = append(xs, g.PixelY)
				qs = append(qs, charge[k].Fraction)
			}
		}
	}
	n := len(xs)
	if n < 4 {
		return result, fmt.Errorf("%w: %d points along %v", ErrInsufficientPoints, n, orientation)
	}

	sigmaQ := e.ErrorFraction * floats.Max(qs)
	shift := floats.Sum(xs) / float64(n)

	// ln q = a + b t + c t^2, each row weighted by q/sigma
	A := mat.NewDense(n, 3, nil)
	B := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		t := xs[k] - shift
		w := qs[k] / sigmaQ
		A.Set(k, 0, w)
		A.Set(k, 1, w*t)
		A.Set(k, 2, w*t*t)
		B.SetVec(k, w*math.Log(qs[k]))
	}

	var qr mat.QR
	qr.Factorize(A)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return result, fmt.Errorf("%w: %v", ErrFitDiverged, err)
	}
	a, b, c := params.AtVec(0), params.AtVec(1), params.AtVec(2)
	if !(c < 0) {
		return result, fmt.Errorf("%w: curvature %g", ErrFitDiverged, c)
	}

	sigma := math.Sqrt(-1 / (2 * c))
	mu := -b / (2 * c)
	amp := math.Exp(a - b*b/(4*c))

	chi2 := 0.0
	for k := 0; k < n; k++ {
		t := xs[k] - shift
		model := amp * math.Exp(-(t-mu)*(t-mu)/(2*sigma*sigma))
		r := (qs[k] - model) / sigmaQ
		chi2 += r * r
	}

	result.Center = mu + shift
	result.Width = sigma
	result.Amplitude = amp
	result.DOF = n - 3
	result.Chi2Red = chi2 / float64(result.DOF)
	result.CenterErr = centerError(A, b, c)
	result.Success = !math.IsNaN(result.Chi2Red) && !math.IsInf(result.Chi2Red, 0)
	if !result.Success {
		return result, fmt.Errorf("%w: chi2 %g", ErrFitDiverged, result.Chi2Red)
	}
	return result, nil
}

// centerError propagates the parameter covariance (AᵀA)⁻¹ to mu = -b/2c.
func centerError(A *mat.Dense, b, c float64) float64 {
	var ata mat.Dense
	ata.Mul(A.T(), A)
	var cov mat.Dense
	if err := cov.Inverse(&ata); err != nil {
		return math.NaN()
	}
	jac := mat.NewVecDense(3, []float64{0, -1 / (2 * c), b / (2 * c * c)})
	var tmp mat.VecDense
	tmp.MulVec(&cov, jac)
	variance := mat.Dot(jac, &tmp)
	if variance < 0 {
		return math.NaN()
	}
	return math.Sqrt(variance)
}
