package aclgad

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const eVPerMeV = 1e6

// The log models diverge at d = D0; distances are kept just above it.
const minDistanceOverD0 = 1 + 1e-6

type ChargeRecord struct {
	Fraction       float64
	Charge         float64 // amplified electrons
	ChargeCoulombs float64
	Valid          bool
}

// ChargeSharingModel splits the induced charge of a hit among the pixels of
// its neighborhood. Weights only decrease with distance (except alpha_log,
// which also depends on the pixel orientation) and are normalized over the
// valid pixels.
type ChargeSharingModel struct {
	physics PhysicsParameters
}

func NewChargeSharingModel(physics PhysicsParameters) *ChargeSharingModel {
	return &ChargeSharingModel{physics: physics}
}

// TotalCharge converts a deposit in MeV to amplified electrons.
func (m *ChargeSharingModel) TotalCharge(edep float64) float64 {
	return edep * eVPerMeV / m.physics.IonizationEnergy * m.physics.AmplificationFactor
}

// Weight is the unnormalized share of a pixel at distance d (mm) whose
// subtended angle is alphaDeg.
func (m *ChargeSharingModel) Weight(d, alphaDeg float64) float64 {
	d0 := m.physics.D0
	ratio := math.Max(d/d0, minDistanceOverD0)
	switch m.physics.Model {
	case CHARGE_MODEL_EXP:
		return math.Exp(-d / d0)
	case CHARGE_MODEL_INVERSE_SQUARE:
		return 1 / (1 + (d/d0)*(d/d0))
	case CHARGE_MODEL_ALPHA_LOG:
		return alphaDeg * math.Pi / 180 / math.Log(ratio)
	default:
		return 1 / math.Log(ratio)
	}
}

// CalcNeighborhoodChargeSharing computes the charge of every pixel of a
// non-pixel hit.
func (m *ChargeSharingModel) CalcNeighborhoodChargeSharing(edep float64, geometry []GeometryRecord) []ChargeRecord {
	records := make([]ChargeRecord, len(geometry))
	weights := make([]float64, 0, len(geometry))
	for k, g := range geometry {
		if !g.Valid {
			records[k] = invalidCharge()
			continue
		}
		w := m.Weight(g.Distance, g.Alpha)
		records[k].Fraction = w
		records[k].Valid = true
		weights = append(weights, w)
	}

	total := floats.Sum(weights)
	if len(weights) == 0 || !(total > 0) || math.IsInf(total, 0) {
		for k := range records {
			if records[k].Valid {
				records[k].Fraction = 0
			}
		}
		return records
	}

	totalCharge := m.TotalCharge(edep)
	for k := range records {
		if !records[k].Valid {
			continue
		}
		records[k].Fraction /= total
		m.fillCharge(&records[k], totalCharge)
	}
	return records
}

// PixelHitCharge gives the whole charge to the struck pixel, the center of
// the neighborhood, and zero to every other valid pixel.
func (m *ChargeSharingModel) PixelHitCharge(edep float64, geometry []GeometryRecord) []ChargeRecord {
	records := make([]ChargeRecord, len(geometry))
	totalCharge := m.TotalCharge(edep)
	for k, g := range geometry {
		if !g.Valid {
			records[k] = invalidCharge()
			continue
		}
		records[k].Valid = true
		if g.DI == 0 && g.DJ == 0 {
			records[k].Fraction = 1
		}
		m.fillCharge(&records[k], totalCharge)
	}
	return records
}

func (m *ChargeSharingModel) fillCharge(rec *ChargeRecord, totalCharge float64) {
	rec.Charge = rec.Fraction * totalCharge
	rec.ChargeCoulombs = rec.Charge * m.physics.ElementaryCharge
}

func invalidCharge() ChargeRecord {
	return ChargeRecord{
		Fraction:       math.NaN(),
		Charge:         math.NaN(),
		ChargeCoulombs: math.NaN(),
	}
}

// ChargeFractionSum adds the fractions of the valid pixels.
func ChargeFractionSum(records []ChargeRecord) float64 {
	fractions := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Valid {
			fractions = append(fractions, r.Fraction)
		}
	}
	return floats.Sum(fractions)
}
