package aclgad

import (
	"fmt"
)

// EventProcessor runs the per-event pipeline for one worker: accumulate,
// map to a pixel, compute the neighborhood and share the charge, and pick
// the radius when auto selection is on. It is not safe for concurrent use;
// every worker builds its own.
type EventProcessor struct {
	det         DetectorGeometry
	physics     PhysicsParameters
	nb          NeighborhoodConfig
	accumulator *EventAccumulator
	mapper      *PixelMapper
	geometry    *NeighborhoodGeometry
	model       *ChargeSharingModel
	selector    *RadiusSelector
	evaluator   FitEvaluator
	eventID     uint32
	verbosity   int
}

func NewEventProcessor(config Configuration, evaluator FitEvaluator) *EventProcessor {
	det := config.Detector()
	physics := config.Physics()
	nb := config.Neighborhood()
	if evaluator == nil {
		evaluator = NewGaussFitEvaluator(config.ChargeErrorFraction)
	}

	p := &EventProcessor{
		det:         det,
		physics:     physics,
		nb:          nb,
		accumulator: NewEventAccumulator(),
		mapper:      NewPixelMapper(det, physics),
		geometry:    NewNeighborhoodGeometry(det, nb.Radius),
		model:       NewChargeSharingModel(physics),
		evaluator:   evaluator,
		verbosity:   config.Verbosity,
	}
	if nb.AutoRadius {
		p.selector = NewRadiusSelector(nb, evaluator, det, p.model, config.Verbosity)
	}
	return p
}

func (p *EventProcessor) BeginEvent(eventID uint32) {
	p.eventID = eventID
	p.accumulator.Reset()
	if p.selector != nil {
		p.selector.Reset()
	}
}

func (p *EventProcessor) SetInitialPos(pos Vec3) {
	p.accumulator.SetInitialPos(pos)
}

func (p *EventProcessor) SetInitialEnergy(energy float64) {
	p.accumulator.SetInitialEnergy(energy)
}

func (p *EventProcessor) AddEdep(edep float64, pos Vec3) {
	if err := p.accumulator.AddEdep(edep, pos); err != nil {
		message := fmt.Errorf("event %d: ignoring step: %w", p.eventID, err)
		logger.Error(message.Error())
	}
}

// EndEvent finalizes the event and returns its record. A panic in any stage
// is recovered and reported as an error record.
func (p *EventProcessor) EndEvent() (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("processor recovered from panic on event %d: %v", p.eventID, r)
			logger.Error(errMessage.Error())
			result = EventResult{
				EventID:       p.eventID,
				InitialPos:    p.accumulator.InitialPos(),
				InitialEnergy: p.accumulator.InitialEnergy(),
				Error:         true,
			}
		}
	}()

	result = EventResult{
		EventID:       p.eventID,
		Status:        STATUS_NO_HIT,
		InitialPos:    p.accumulator.InitialPos(),
		InitialEnergy: p.accumulator.InitialEnergy(),
		Radius:        p.nb.Radius,
	}

	dep, ok := p.accumulator.Finalize()
	if !ok {
		if p.verbosity > 1 {
			logger.Info(fmt.Sprintf("Event %d has no energy deposit", p.eventID), "processor")
		}
		return result
	}
	result.Edep = dep.Edep
	result.NSteps = dep.NSteps
	result.TruePos = dep.Position

	result.Pixel = p.mapper.CalcNearestPixel(dep.Position)
	if !result.Pixel.Valid {
		result.Status = STATUS_OUTSIDE_GRID
		if p.verbosity > 0 {
			message := fmt.Sprintf("Event %d hit outside the pixel grid at (%.4f, %.4f)",
				p.eventID, dep.Position.X, dep.Position.Y)
			logger.Info(message, "processor")
		}
		return result
	}

	hit := result.Pixel.Index
	if result.Pixel.PixelHit {
		result.Status = STATUS_PIXEL_HIT
		result.Geometry = p.geometry.CalcNeighborhoodGridAngles(dep.Position, hit.I, hit.J)
		result.Charge = p.model.PixelHitCharge(dep.Edep, result.Geometry)
		return result
	}

	result.Status = STATUS_NON_PIXEL_HIT
	if p.selector != nil {
		selection, best := p.selector.SelectOptimalRadius(dep, hit)
		result.Selection = &selection
		result.Radius = selection.Radius
		if best != nil {
			result.Geometry = best.Geometry
			result.Charge = best.Charge
		}
	}
	if result.Geometry == nil {
		geometry := p.geometry
		if geometry.Radius() != result.Radius {
			geometry = NewNeighborhoodGeometry(p.det, result.Radius)
		}
		result.Geometry = geometry.CalcNeighborhoodGridAngles(dep.Position, hit.I, hit.J)
		result.Charge = p.model.CalcNeighborhoodChargeSharing(dep.Edep, result.Geometry)
	}

	if reporter, ok := p.evaluator.(FitReporter); ok {
		fits, err := reporter.Fit(result.Radius, result.Geometry, result.Charge)
		if err == nil {
			result.Fits = fits
		} else if p.verbosity > 1 {
			logger.Info(fmt.Sprintf("Event %d: no fit published: %v", p.eventID, err), "processor")
		}
	}
	return result
}

// Process runs a complete event from its deposit list.
func (p *EventProcessor) Process(event DepositEvent) EventResult {
	p.BeginEvent(event.EventID)
	p.SetInitialPos(event.InitialPos)
	p.SetInitialEnergy(event.InitialEnergy)
	for _, step := range event.Steps {
		p.AddEdep(step.Edep, step.Position)
	}
	return p.EndEvent()
}
