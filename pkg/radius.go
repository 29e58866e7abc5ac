package aclgad

import (
	"fmt"
	"math"
)

type SelectorState int

const (
	SELECTOR_IDLE SelectorState = iota
	SELECTOR_SEARCHING
	SELECTOR_SELECTED
)

func (s SelectorState) String() string {
	switch s {
	case SELECTOR_IDLE:
		return "idle"
	case SELECTOR_SEARCHING:
		return "searching"
	case SELECTOR_SELECTED:
		return "selected"
	default:
		return "unknown"
	}
}

type RadiusSelection struct {
	Radius  int
	Quality float64
	// LowConfidence is set when no candidate produced a usable score and the
	// radius is the fallback one.
	LowConfidence bool
	Evaluated     int
	Failed        int
	State         SelectorState
}

// RadiusCandidate holds what was computed for one radius, so the caller can
// reuse the winner instead of recomputing it.
type RadiusCandidate struct {
	Radius   int
	Geometry []GeometryRecord
	Charge   []ChargeRecord
	Quality  float64
}

type RadiusSelector struct {
	config    NeighborhoodConfig
	evaluator FitEvaluator
	det       DetectorGeometry
	model     *ChargeSharingModel
	state     SelectorState
	verbosity int
}

func NewRadiusSelector(config NeighborhoodConfig, evaluator FitEvaluator,
	det DetectorGeometry, model *ChargeSharingModel, verbosity int) *RadiusSelector {
	return &RadiusSelector{
		config:    config,
		evaluator: evaluator,
		det:       det,
		model:     model,
		state:     SELECTOR_IDLE,
		verbosity: verbosity,
	}
}

func (s *RadiusSelector) State() SelectorState {
	return s.state
}

func (s *RadiusSelector) fallbackRadius() int {
	if s.config.Radius >= s.config.MinRadius && s.config.Radius <= s.config.MaxRadius {
		return s.config.Radius
	}
	return s.config.MinRadius
}

// SelectOptimalRadius scans [MinRadius, MaxRadius] for a non-pixel hit. The
// best score wins; ties keep the smaller radius. Candidates the evaluator
// rejects are skipped. The returned candidate is nil when nothing could be
// scored, the selection then carries the fallback radius.
func (s *RadiusSelector) SelectOptimalRadius(dep Deposit, hit PixelIndex) (RadiusSelection, *RadiusCandidate) {
	s.state = SELECTOR_SEARCHING

	selection := RadiusSelection{Radius: s.fallbackRadius(), Quality: math.NaN()}
	var best *RadiusCandidate

	for radius := s.config.MinRadius; radius <= s.config.MaxRadius; radius++ {
		candidate := s.evaluateRadius(dep, hit, radius)
		selection.Evaluated++
		if candidate == nil {
			selection.Failed++
			continue
		}
		if best == nil || s.config.Direction.Better(candidate.Quality, best.Quality) {
			best = candidate
		}
	}

	if best == nil {
		selection.LowConfidence = true
		if s.verbosity > 1 {
			message := fmt.Sprintf("No usable fit for radius in [%d, %d], falling back to %d",
				s.config.MinRadius, s.config.MaxRadius, selection.Radius)
			logger.Info(message, "radius")
		}
	} else {
		selection.Radius = best.Radius
		selection.Quality = best.Quality
	}
	selection.Radius = clamp(selection.Radius, s.config.MinRadius, s.config.MaxRadius)
	s.state = SELECTOR_SELECTED
	selection.State = s.state
	return selection, best
}

func (s *RadiusSelector) evaluateRadius(dep Deposit, hit PixelIndex, radius int) *RadiusCandidate {
	geometry := NewNeighborhoodGeometry(s.det, radius)
	records := geometry.CalcNeighborhoodGridAngles(dep.Position, hit.I, hit.J)
	charge := s.model.CalcNeighborhoodChargeSharing(dep.Edep, records)

	quality, err := s.evaluator.Evaluate(radius, records, charge)
	if err != nil || math.IsNaN(quality) || math.IsInf(quality, 0) {
		if s.verbosity > 2 {
			message := fmt.Sprintf("Radius %d excluded: quality %g, err %v", radius, quality, err)
			logger.Info(message, "radius")
		}
		return nil
	}
	return &RadiusCandidate{Radius: radius, Geometry: records, Charge: charge, Quality: quality}
}

// Reset returns the selector to Idle before the next event.
func (s *RadiusSelector) Reset() {
	s.state = SELECTOR_IDLE
}
