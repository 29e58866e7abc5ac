package aclgad

import (
	"encoding/json"
	"fmt"
)

type ChargeModel int

const (
	CHARGE_MODEL_LOG ChargeModel = iota
	CHARGE_MODEL_EXP
	CHARGE_MODEL_INVERSE_SQUARE
	CHARGE_MODEL_ALPHA_LOG
)

var chargeModelStrings = []string{
	"log",
	"exp",
	"inverse_square",
	"alpha_log",
}

func (m ChargeModel) String() string {
	if m < CHARGE_MODEL_LOG || m > CHARGE_MODEL_ALPHA_LOG {
		return "UNKNOWN"
	}
	return chargeModelStrings[m]
}

func (m ChargeModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *ChargeModel) UnmarshalJSON(data []byte) error {
	i, err := parseEnum(data, chargeModelStrings, "ChargeModel")
	if err != nil {
		return err
	}
	*m = ChargeModel(i)
	return nil
}

// PixelHitRule selects the radial threshold under which a hit is attributed
// entirely to its nearest pixel.
type PixelHitRule int

const (
	PIXEL_HIT_HALF_PIXEL PixelHitRule = iota
	PIXEL_HIT_D0
)

var pixelHitRuleStrings = []string{
	"half_pixel",
	"d0",
}

func (r PixelHitRule) String() string {
	if r < PIXEL_HIT_HALF_PIXEL || r > PIXEL_HIT_D0 {
		return "UNKNOWN"
	}
	return pixelHitRuleStrings[r]
}

func (r PixelHitRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *PixelHitRule) UnmarshalJSON(data []byte) error {
	i, err := parseEnum(data, pixelHitRuleStrings, "PixelHitRule")
	if err != nil {
		return err
	}
	*r = PixelHitRule(i)
	return nil
}

type QualityDirection int

const (
	LOWER_IS_BETTER QualityDirection = iota
	HIGHER_IS_BETTER
)

var qualityDirectionStrings = []string{
	"lower",
	"higher",
}

func (d QualityDirection) String() string {
	if d < LOWER_IS_BETTER || d > HIGHER_IS_BETTER {
		return "UNKNOWN"
	}
	return qualityDirectionStrings[d]
}

func (d QualityDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *QualityDirection) UnmarshalJSON(data []byte) error {
	i, err := parseEnum(data, qualityDirectionStrings, "QualityDirection")
	if err != nil {
		return err
	}
	*d = QualityDirection(i)
	return nil
}

// Better reports whether quality a beats b. Equal scores are never better.
func (d QualityDirection) Better(a, b float64) bool {
	if d == HIGHER_IS_BETTER {
		return a > b
	}
	return a < b
}

func parseEnum(data []byte, names []string, typeName string) (int, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, err
	}
	for i, v := range names {
		if v == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s: %s", typeName, s)
}
