package aclgad

import (
	"fmt"
	"math"
)

type Configuration struct {
	MaxEvents        int    `json:"max_events"`
	Skip             int    `json:"skip"`
	Verbosity        int    `json:"verbosity"`
	NumWorkers       int    `json:"num_workers"`
	FileIn           string `json:"file_in"`
	FileOut          string `json:"file_out"`
	WriteData        bool   `json:"write_data"`
	Discard          bool   `json:"discard"`
	CompressionLevel int    `json:"compression_level"`

	// Toy deposit source, used when FileIn is empty
	GenerateEvents int     `json:"generate_events"`
	Seed           uint64  `json:"seed"`
	PrimaryEnergy  float64 `json:"primary_energy"` // MeV
	PrimaryZ       float64 `json:"primary_z"`      // mm
	StepsPerTrack  int     `json:"steps_per_track"`

	// Run conditions database
	NoDB      bool   `json:"no_db"`
	Host      string `json:"host"`
	User      string `json:"user"`
	Passwd    string `json:"pass"`
	DBName    string `json:"dbname"`
	RunNumber int    `json:"run_number"`

	// Detector grid, lengths in mm
	PixelSize         float64 `json:"pixel_size"`
	PixelSpacing      float64 `json:"pixel_spacing"`
	PixelCornerOffset float64 `json:"pixel_corner_offset"`
	DetSize           float64 `json:"det_size"`
	NumBlocksPerSide  int     `json:"num_blocks_per_side"`
	SensorThickness   float64 `json:"sensor_thickness"`

	NeighborhoodRadius int  `json:"neighborhood_radius"`
	AutoRadius         bool `json:"auto_radius"`
	MinAutoRadius      int  `json:"min_auto_radius"`
	MaxAutoRadius      int  `json:"max_auto_radius"`

	IonizationEnergy    float64          `json:"ionization_energy"` // eV per e-h pair
	AmplificationFactor float64          `json:"amplification_factor"`
	D0                  float64          `json:"d0"`                // mm
	ElementaryCharge    float64          `json:"elementary_charge"` // C
	ChargeModel         ChargeModel      `json:"charge_model"`
	PixelHitRule        PixelHitRule     `json:"pixel_hit_rule"`
	QualityDirection    QualityDirection `json:"quality_direction"`
	ChargeErrorFraction float64          `json:"charge_error_fraction"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	var config Configuration

	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.NumWorkers = 1
	config.WriteData = true
	config.Discard = true
	config.CompressionLevel = 4

	config.GenerateEvents = 1000
	config.Seed = 1
	config.PrimaryEnergy = 0.1
	config.PrimaryZ = 1.0
	config.StepsPerTrack = 10

	config.NoDB = true
	config.Host = "localhost"
	config.User = "aclgadreader"
	config.Passwd = "readonly"
	config.DBName = "ACLGAD"

	config.PixelSize = 0.1
	config.PixelSpacing = 0.15
	config.PixelCornerOffset = 0.05
	config.DetSize = 3.2
	config.NumBlocksPerSide = 0
	config.SensorThickness = 0.05

	config.NeighborhoodRadius = 4
	config.AutoRadius = false
	config.MinAutoRadius = 1
	config.MaxAutoRadius = 4

	config.IonizationEnergy = 3.6
	config.AmplificationFactor = 10.0
	config.D0 = 0.01
	config.ElementaryCharge = 1.602176634e-19
	config.ChargeModel = CHARGE_MODEL_LOG
	config.PixelHitRule = PIXEL_HIT_HALF_PIXEL
	config.QualityDirection = LOWER_IS_BETTER
	config.ChargeErrorFraction = 0.05
	return config
}

func (c Configuration) Detector() DetectorGeometry {
	det := DetectorGeometry{
		PixelSize:         c.PixelSize,
		PixelSpacing:      c.PixelSpacing,
		PixelCornerOffset: c.PixelCornerOffset,
		DetSize:           c.DetSize,
		NumBlocksPerSide:  c.NumBlocksPerSide,
		SensorThickness:   c.SensorThickness,
	}
	if det.NumBlocksPerSide <= 0 {
		det.NumBlocksPerSide = det.derivedNumBlocks()
	}
	return det
}

func (c Configuration) Physics() PhysicsParameters {
	return PhysicsParameters{
		IonizationEnergy:    c.IonizationEnergy,
		AmplificationFactor: c.AmplificationFactor,
		D0:                  c.D0,
		ElementaryCharge:    c.ElementaryCharge,
		Model:               c.ChargeModel,
		PixelHitRule:        c.PixelHitRule,
	}
}

func (c Configuration) Neighborhood() NeighborhoodConfig {
	return NeighborhoodConfig{
		Radius:     c.NeighborhoodRadius,
		AutoRadius: c.AutoRadius,
		MinRadius:  c.MinAutoRadius,
		MaxRadius:  c.MaxAutoRadius,
		Direction:  c.QualityDirection,
	}
}

// Validate checks everything that must hold before the first event. Any error
// returned here is fatal for the run.
func (c Configuration) Validate() error {
	if c.NumWorkers < 1 {
		return fmt.Errorf("%w: num_workers must be >= 1, got %d", ErrInvalidConfig, c.NumWorkers)
	}
	if err := c.Physics().Validate(); err != nil {
		return err
	}
	if c.ChargeErrorFraction <= 0 {
		return fmt.Errorf("%w: charge_error_fraction must be positive", ErrInvalidConfig)
	}
	if c.NeighborhoodRadius < 0 {
		return fmt.Errorf("%w: neighborhood_radius must be >= 0, got %d", ErrInvalidConfig, c.NeighborhoodRadius)
	}
	nb := c.Neighborhood()
	if c.AutoRadius {
		if c.MinAutoRadius < 0 || c.MinAutoRadius > c.MaxAutoRadius {
			return fmt.Errorf("%w: auto radius range [%d, %d]", ErrInvalidConfig, c.MinAutoRadius, c.MaxAutoRadius)
		}
	}
	return c.Detector().Validate(nb.Widest())
}

type PhysicsParameters struct {
	IonizationEnergy    float64 `hdf5:"ionization_energy"`
	AmplificationFactor float64 `hdf5:"amplification_factor"`
	D0                  float64 `hdf5:"d0"`
	ElementaryCharge    float64 `hdf5:"elementary_charge"`
	Model               ChargeModel
	PixelHitRule        PixelHitRule
}

func (p PhysicsParameters) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"ionization_energy", p.IonizationEnergy},
		{"amplification_factor", p.AmplificationFactor},
		{"d0", p.D0},
		{"elementary_charge", p.ElementaryCharge},
	}
	for _, check := range checks {
		if !(check.value > 0) || math.IsInf(check.value, 0) {
			return fmt.Errorf("%w: %s must be a positive number, got %g", ErrInvalidConfig, check.name, check.value)
		}
	}
	if p.Model.String() == "UNKNOWN" {
		return fmt.Errorf("%w: unknown charge model %d", ErrInvalidConfig, p.Model)
	}
	if p.PixelHitRule.String() == "UNKNOWN" {
		return fmt.Errorf("%w: unknown pixel hit rule %d", ErrInvalidConfig, p.PixelHitRule)
	}
	return nil
}

type NeighborhoodConfig struct {
	Radius     int
	AutoRadius bool
	MinRadius  int
	MaxRadius  int
	Direction  QualityDirection
}

// Widest returns the largest radius any event of the run can use.
func (n NeighborhoodConfig) Widest() int {
	if n.AutoRadius && n.MaxRadius > n.Radius {
		return n.MaxRadius
	}
	return n.Radius
}
