package aclgad

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestConfiguration_DefaultIsValid(t *testing.T) {
	if err := DefaultConfiguration().Validate(); err != nil {
		t.Fatalf("default configuration: %v", err)
	}
}

func TestConfiguration_MarginTooLarge(t *testing.T) {
	config := testConfig()
	config.NeighborhoodRadius = 9
	if err := config.Validate(); err != nil {
		t.Fatalf("radius 9 should fit: %v", err)
	}

	config.NeighborhoodRadius = 11
	err := config.Validate()
	var marginErr *ErrMarginTooLarge
	if !errors.As(err, &marginErr) {
		t.Fatalf("err = %v, want ErrMarginTooLarge", err)
	}
	if marginErr.Radius != 11 || !nearly(marginErr.Margin, 1.75, 1e-9) {
		t.Fatalf("unexpected margin error %+v", marginErr)
	}

	// the widest auto radius is the one that has to fit
	config.NeighborhoodRadius = 2
	config.AutoRadius = true
	config.MinAutoRadius = 1
	config.MaxAutoRadius = 12
	if !errors.As(config.Validate(), &marginErr) {
		t.Fatalf("max auto radius 12 accepted")
	}
}

func TestConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Configuration)
	}{
		{"zero D0", func(c *Configuration) { c.D0 = 0 }},
		{"negative ionization", func(c *Configuration) { c.IonizationEnergy = -3.6 }},
		{"zero amplification", func(c *Configuration) { c.AmplificationFactor = 0 }},
		{"no workers", func(c *Configuration) { c.NumWorkers = 0 }},
		{"negative radius", func(c *Configuration) { c.NeighborhoodRadius = -1 }},
		{"min above max", func(c *Configuration) { c.AutoRadius = true; c.MinAutoRadius = 4; c.MaxAutoRadius = 2 }},
		{"unknown model", func(c *Configuration) { c.ChargeModel = ChargeModel(42) }},
		{"spacing below size", func(c *Configuration) { c.PixelSpacing = 0.05 }},
		{"zero error fraction", func(c *Configuration) { c.ChargeErrorFraction = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfiguration_JSON(t *testing.T) {
	data := []byte(`{
		"neighborhood_radius": 3,
		"auto_radius": true,
		"charge_model": "exp",
		"pixel_hit_rule": "d0",
		"quality_direction": "higher",
		"d0": 0.02
	}`)
	config := DefaultConfiguration()
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if config.NeighborhoodRadius != 3 || !config.AutoRadius || config.D0 != 0.02 {
		t.Fatalf("fields not read: %+v", config)
	}
	if config.ChargeModel != CHARGE_MODEL_EXP || config.PixelHitRule != PIXEL_HIT_D0 || config.QualityDirection != HIGHER_IS_BETTER {
		t.Fatalf("enums not read: %v %v %v", config.ChargeModel, config.PixelHitRule, config.QualityDirection)
	}
	// untouched fields keep their defaults
	if config.PixelSize != 0.1 || config.DetSize != 3.2 {
		t.Fatalf("defaults lost: %+v", config)
	}

	if err := json.Unmarshal([]byte(`{"charge_model": "gaussian"}`), &config); err == nil {
		t.Fatalf("unknown charge model accepted")
	}
}

func TestEnums_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		M ChargeModel
		R PixelHitRule
		D QualityDirection
	}{CHARGE_MODEL_INVERSE_SQUARE, PIXEL_HIT_HALF_PIXEL, LOWER_IS_BETTER})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"M":"inverse_square","R":"half_pixel","D":"lower"}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestQualityDirection_Better(t *testing.T) {
	if !LOWER_IS_BETTER.Better(1, 2) || LOWER_IS_BETTER.Better(2, 1) || LOWER_IS_BETTER.Better(1, 1) {
		t.Fatalf("lower is better broken")
	}
	if !HIGHER_IS_BETTER.Better(2, 1) || HIGHER_IS_BETTER.Better(1, 2) || HIGHER_IS_BETTER.Better(1, 1) {
		t.Fatalf("higher is better broken")
	}
}
