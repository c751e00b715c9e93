package measure

import (
	"math"
	"strconv"

	"github.com/roach88/takeoff/internal/calibration"
)

// ScaledDistance is the unrounded real-world distance of m:
// PixelDistance times the factor, or times 1 when uncalibrated.
func ScaledDistance(m Measurement, f calibration.Factor) float64 {
	return m.PixelDistance * f.Multiplier()
}

// DisplayDistance is ScaledDistance rounded to two decimals, halves away
// from zero (0.625 shows as 0.63).
func DisplayDistance(m Measurement, f calibration.Factor) float64 {
	return Round2(ScaledDistance(m, f))
}

// FormatDistance renders DisplayDistance with exactly two decimals and,
// when calibrated, the factor's unit: "0.63 m", or "5.00" uncalibrated.
func FormatDistance(m Measurement, f calibration.Factor) string {
	s := strconv.FormatFloat(DisplayDistance(m, f), 'f', 2, 64)
	if f.Calibrated() && f.Unit != "" {
		s += " " + f.Unit
	}
	return s
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Row is one line of the tabular measurement list.
type Row struct {
	Index         int     `json:"index"`
	ID            string  `json:"id"`
	Page          int     `json:"page"`
	PixelDistance float64 `json:"pixel_distance"`
	Distance      float64 `json:"distance"`
	Text          string  `json:"text"`
}

// Rows derives the measurement list shown next to the drawing, in display
// order, under calibration f. Index is 1-based.
func Rows(s Snapshot, f calibration.Factor) []Row {
	rows := make([]Row, s.Len())
	for i := range rows {
		m := s.At(i)
		rows[i] = Row{
			Index:         i + 1,
			ID:            m.ID,
			Page:          m.Page(),
			PixelDistance: m.PixelDistance,
			Distance:      DisplayDistance(m, f),
			Text:          FormatDistance(m, f),
		}
	}
	return rows
}
