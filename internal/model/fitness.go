package model

import "math"

// FitnessResult aggregates the outcome of a batch of recognition trials.
// Fitness is the fraction of trials recognized correctly and Error its
// statistical uncertainty. Neither is clamped.
type FitnessResult struct {
	Iterations int     `json:"iterations"`
	Fitness    float64 `json:"fitness"`
	Error      float64 `json:"error"`
}

func NewFitnessResult(iterations int, fitness, err float64) FitnessResult {
	return FitnessResult{Iterations: iterations, Fitness: fitness, Error: err}
}

// FitnessResultFromCounts builds a batch result from raw trial counts, using
// the binomial standard error of the matched fraction as Error.
func FitnessResultFromCounts(matched, total int) FitnessResult {
	if total <= 0 {
		return FitnessResult{}
	}
	p := float64(matched) / float64(total)
	return FitnessResult{
		Iterations: total,
		Fitness:    p,
		Error:      math.Sqrt(p * (1 - p) / float64(total)),
	}
}

// Combine merges two batch results. Iteration counts add; fitness and error
// become the iteration-weighted means of the two batches.
func (r FitnessResult) Combine(other FitnessResult) FitnessResult {
	total := r.Iterations + other.Iterations
	if total == 0 {
		return FitnessResult{}
	}
	wr := float64(r.Iterations) / float64(total)
	wo := float64(other.Iterations) / float64(total)
	return FitnessResult{
		Iterations: total,
		Fitness:    r.Fitness*wr + other.Fitness*wo,
		Error:      r.Error*wr + other.Error*wo,
	}
}

// CombineAll folds results left to right with Combine.
func CombineAll(results ...FitnessResult) FitnessResult {
	var out FitnessResult
	for _, r := range results {
		out = out.Combine(r)
	}
	return out
}
