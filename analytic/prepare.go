package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalibrationSource supplies per-segment calibration factors for a mode.
// Factors are the raw (non-negative) values; Prepare applies their square root.
type CalibrationSource interface {
	Factors(mode Mode) ([]float64, error)
}

// Prepare conditions a raw coefficient vector for aggregation. For piston the
// mean is removed first, so a global offset carries no differential error.
// Each coefficient is then scaled by sqrt(calib[i]); a nil calib means all ones.
// coef is not modified.
func Prepare(mode Mode, coef, calib []float64) ([]float64, error) {
	out := make([]float64, len(coef))
	for i, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite: %w", i, ErrData)
		}
		out[i] = c
	}

	if mode.Kind == Piston && len(out) > 0 {
		mean := stat.Mean(out, nil)
		for i := range out {
			out[i] -= mean
		}
	}

	if calib == nil {
		return out, nil
	}
	if len(calib) != len(out) {
		return nil, fmt.Errorf("calibration has %d factors for %d segments: %w", len(calib), len(out), ErrData)
	}
	for i, f := range calib {
		if !(f >= 0) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("calibration factor %d is %g, must be non-negative and finite: %w", i, f, ErrData)
		}
		out[i] *= math.Sqrt(f)
	}
	return out, nil
}
