package aclgad

import (
	"math"
	"math/rand/v2"

	"go-hep.org/x/hep/fmom"
)

const (
	electronMass = 0.51099895 // MeV
	// Most probable energy loss of a MIP in silicon, MeV per mm.
	siliconDEdx = 0.388
	// Lateral spread added per step, mm.
	stepScatter = 0.001
)

type Primary struct {
	Position Vec3
	P4       fmom.PxPyPzE
}

// KineticEnergy in MeV.
func (p *Primary) KineticEnergy() float64 {
	return p.P4.E() - p.P4.M()
}

// PrimaryGenerator stands in for the particle gun and the transport engine:
// it shoots electrons along -z uniformly over the part of the detector where
// every hit pixel has a complete neighborhood, and steps them through the
// sensor.
type PrimaryGenerator struct {
	det    DetectorGeometry
	radius int
	margin float64
	energy float64
	z      float64
	steps  int
	rng    *rand.Rand
}

// NewPrimaryGenerator fails with ErrMarginTooLarge when the widest configured
// neighborhood cannot fit inside the detector.
func NewPrimaryGenerator(config Configuration, stream uint64) (*PrimaryGenerator, error) {
	det := config.Detector()
	radius := config.Neighborhood().Widest()
	if err := det.Validate(radius); err != nil {
		return nil, err
	}
	steps := config.StepsPerTrack
	if steps < 1 {
		steps = 1
	}
	return &PrimaryGenerator{
		det:    det,
		radius: radius,
		margin: det.Margin(radius),
		energy: config.PrimaryEnergy,
		z:      config.PrimaryZ,
		steps:  steps,
		rng:    rand.New(rand.NewPCG(config.Seed, stream)),
	}, nil
}

// AllowedRange is the XY interval primaries are drawn from.
func (g *PrimaryGenerator) AllowedRange() (float64, float64) {
	return -g.det.DetSize/2 + g.margin, g.det.DetSize/2 - g.margin
}

func (g *PrimaryGenerator) GeneratePrimary() Primary {
	span := g.det.DetSize - 2*g.margin
	x := g.rng.Float64()*span - (g.det.DetSize/2 - g.margin)
	y := g.rng.Float64()*span - (g.det.DetSize/2 - g.margin)

	e := g.energy + electronMass
	p := math.Sqrt(e*e - electronMass*electronMass)
	return Primary{
		Position: Vec3{X: x, Y: y, Z: g.z},
		P4:       fmom.NewPxPyPzE(0, 0, -p, e),
	}
}

// Deposits steps the primary straight through the sensor, from its surface
// at z = 0 down to -SensorThickness.
func (g *PrimaryGenerator) Deposits(primary Primary) []Step {
	total := math.Min(primary.KineticEnergy(), siliconDEdx*g.det.SensorThickness)
	if !(total > 0) {
		return nil
	}
	dz := g.det.SensorThickness / float64(g.steps)

	raw := make([]float64, g.steps)
	sum := 0.0
	for k := range raw {
		raw[k] = 0.5 + g.rng.Float64()
		sum += raw[k]
	}

	steps := make([]Step, g.steps)
	x, y := primary.Position.X, primary.Position.Y
	for k := range steps {
		x += g.rng.NormFloat64() * stepScatter
		y += g.rng.NormFloat64() * stepScatter
		steps[k] = Step{
			Edep:     total * raw[k] / sum,
			Position: Vec3{X: x, Y: y, Z: -(float64(k) + 0.5) * dz},
		}
	}
	return steps
}

func (g *PrimaryGenerator) Event(eventID uint32) DepositEvent {
	primary := g.GeneratePrimary()
	return DepositEvent{
		EventID:       eventID,
		InitialPos:    primary.Position,
		InitialEnergy: primary.KineticEnergy(),
		Steps:         g.Deposits(primary),
	}
}
