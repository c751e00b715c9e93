package calibration

import "fmt"

// Scale is one registered drawing scale.
type Scale struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Factor float64 `json:"factor"`
	Unit   string  `json:"unit"`
}

// Calibration returns the factor that selecting this scale installs.
func (s Scale) Calibration() Factor {
	return Factor{ScaleID: s.ID, Value: s.Factor, Unit: s.Unit}
}

// Factor is the session-global calibration. The zero value is
// "uncalibrated": distances are shown in raw pixel units.
type Factor struct {
	ScaleID string  `json:"scale_id,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Unit    string  `json:"unit,omitempty"`
}

// Uncalibrated returns the absent factor.
func Uncalibrated() Factor {
	return Factor{}
}

// Calibrated reports whether a positive factor is set.
func (f Factor) Calibrated() bool {
	return f.Value > 0
}

// Multiplier is the value distances are multiplied by: the factor when
// calibrated, 1 otherwise.
func (f Factor) Multiplier() float64 {
	if !f.Calibrated() {
		return 1
	}
	return f.Value
}

func (f Factor) String() string {
	if !f.Calibrated() {
		return "uncalibrated"
	}
	return fmt.Sprintf("%s (%g %s/px)", f.ScaleID, f.Value, f.Unit)
}
