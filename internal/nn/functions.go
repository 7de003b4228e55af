package nn

import (
	"fmt"

	"swypesim/internal/model"
)

// saturationLimit bounds every neuron's weighted sum before activation.
const saturationLimit = 1000.0

func Saturation(value float64) float64 {
	return SaturationWithSpread(value, saturationLimit)
}

// SaturationWithSpread clamps value to [-|spread|, |spread|].
func SaturationWithSpread(value, spread float64) float64 {
	if spread < 0 {
		spread = -spread
	}
	switch {
	case value > spread:
		return spread
	case value < -spread:
		return -spread
	default:
		return value
	}
}

// VectorDifference returns to - from element-wise.
func VectorDifference(from, to []float64) ([]float64, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: vector lengths differ: %d != %d", model.ErrInvalidInput, len(from), len(to))
	}
	out := make([]float64, len(from))
	for i, v := range from {
		out[i] = to[i] - v
	}
	return out, nil
}
