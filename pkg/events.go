package aclgad

type HitStatus int

const (
	STATUS_NO_HIT HitStatus = iota
	STATUS_OUTSIDE_GRID
	STATUS_PIXEL_HIT
	STATUS_NON_PIXEL_HIT
)

func (s HitStatus) String() string {
	switch s {
	case STATUS_NO_HIT:
		return "no_hit"
	case STATUS_OUTSIDE_GRID:
		return "outside_grid"
	case STATUS_PIXEL_HIT:
		return "pixel_hit"
	case STATUS_NON_PIXEL_HIT:
		return "non_pixel_hit"
	default:
		return "unknown"
	}
}

// Step is one energy deposit reported by the transport engine.
type Step struct {
	Edep     float64 // MeV
	Position Vec3
}

// DepositEvent is the full input of one event.
type DepositEvent struct {
	EventID       uint32
	InitialPos    Vec3
	InitialEnergy float64 // MeV, kinetic energy of the primary
	Steps         []Step
}

// EventResult is the record published for every event. Geometry and Charge
// have GridSize(Radius) entries for pixel and non-pixel hits and are empty
// otherwise.
type EventResult struct {
	EventID       uint32
	Status        HitStatus
	Edep          float64
	NSteps        int // steps with a positive deposit
	TruePos       Vec3
	InitialPos    Vec3
	InitialEnergy float64
	Pixel         PixelMapping
	Radius        int
	Selection     *RadiusSelection
	Geometry      []GeometryRecord
	Charge        []ChargeRecord
	Fits          []FitResult
	Error         bool
}

func (r *EventResult) HasHit() bool {
	return r.Status == STATUS_PIXEL_HIT || r.Status == STATUS_NON_PIXEL_HIT
}
