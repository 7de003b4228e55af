package stats

import (
	"fmt"
	"math"

	"swypesim/internal/model"
)

// Mean is the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: mean of no values", model.ErrInvalidInput)
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev is the population standard deviation of values.
func StdDev(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values))), nil
}

// FitnessSpread returns the mean and spread of the fitness of several batches,
// unweighted by their iteration counts.
func FitnessSpread(results []model.FitnessResult) (mean, std float64, err error) {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Fitness
	}
	if mean, err = Mean(values); err != nil {
		return 0, 0, err
	}
	std, err = StdDev(values)
	return mean, std, err
}
