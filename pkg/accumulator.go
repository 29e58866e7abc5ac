package aclgad

import "fmt"

// Deposit is the finalized content of one event: total deposited energy (MeV)
// and its energy-weighted position.
type Deposit struct {
	Edep     float64
	Position Vec3
	NSteps   int
}

// EventAccumulator merges the step-level deposits of one event. One instance
// per worker, reset at the start of every event.
type EventAccumulator struct {
	edep          float64
	pos           Vec3
	nSteps        int
	initialPos    Vec3
	initialEnergy float64
	hasHit        bool
}

func NewEventAccumulator() *EventAccumulator {
	return &EventAccumulator{}
}

func (a *EventAccumulator) Reset() {
	a.edep = 0
	a.pos = Vec3{}
	a.nSteps = 0
	a.initialPos = Vec3{}
	a.initialEnergy = 0
	a.hasHit = false
}

func (a *EventAccumulator) SetInitialPos(pos Vec3) {
	a.initialPos = pos
}

func (a *EventAccumulator) InitialPos() Vec3 {
	return a.initialPos
}

func (a *EventAccumulator) SetInitialEnergy(energy float64) {
	a.initialEnergy = energy
}

func (a *EventAccumulator) InitialEnergy() float64 {
	return a.initialEnergy
}

// AddEdep adds one step. The position is kept as a running energy-weighted
// average so no per-step storage is needed.
func (a *EventAccumulator) AddEdep(edep float64, pos Vec3) error {
	if edep < 0 {
		return fmt.Errorf("%w: %g MeV", ErrNegativeEdep, edep)
	}
	if edep == 0 {
		return nil
	}
	total := a.edep + edep
	a.pos = a.pos.Scale(a.edep / total).Add(pos.Scale(edep / total))
	a.edep = total
	a.nSteps++
	a.hasHit = true
	return nil
}

// Finalize returns the event deposit. ok is false when no positive deposit
// was seen; callers must then skip every downstream step.
func (a *EventAccumulator) Finalize() (Deposit, bool) {
	if !a.hasHit {
		return Deposit{}, false
	}
	return Deposit{Edep: a.edep, Position: a.pos, NSteps: a.nSteps}, true
}
