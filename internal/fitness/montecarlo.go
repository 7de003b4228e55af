// Package fitness scores a keyboard by how often an input model's noisy
// traces are recognised as the word that produced them.
package fitness

import (
	"context"
	"fmt"

	"swypesim/internal/inputmodel"
	"swypesim/internal/keyboard"
	"swypesim/internal/model"
	"swypesim/internal/vocab"
)

// MonteCarloEfficiency runs iterations recognition trials and returns the
// fraction matched. Each trial draws a word, synthesizes a trace for it and
// picks the vocabulary word of highest marginal probability; ties go to the
// earlier word.
func MonteCarloEfficiency(kb keyboard.Keyboard, m inputmodel.InputModel, words vocab.WordList, iterations int) (float64, error) {
	result, err := monteCarlo(context.Background(), kb, m, words, iterations)
	if err != nil {
		return 0, err
	}
	return result.Fitness, nil
}

func monteCarlo(ctx context.Context, kb keyboard.Keyboard, m inputmodel.InputModel, words vocab.WordList, iterations int) (model.FitnessResult, error) {
	if words == nil || words.Words() == 0 {
		return model.FitnessResult{}, fmt.Errorf("%w: empty vocabulary", model.ErrInvalidInput)
	}
	if iterations <= 0 {
		return model.FitnessResult{}, fmt.Errorf("%w: iterations must be positive, got %d", model.ErrInvalidInput, iterations)
	}

	matched := 0
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return model.FitnessResult{}, err
		}
		ok, err := trial(kb, m, words)
		if err != nil {
			return model.FitnessResult{}, fmt.Errorf("trial %d: %w", i, err)
		}
		if ok {
			matched++
			trialsTotal.WithLabelValues("matched").Inc()
		} else {
			trialsTotal.WithLabelValues("missed").Inc()
		}
	}
	return model.FitnessResultFromCounts(matched, iterations), nil
}

func trial(kb keyboard.Keyboard, m inputmodel.InputModel, words vocab.WordList) (bool, error) {
	word := words.RandomWord()
	sigma, err := m.RandomVector(word, kb)
	if err != nil {
		return false, fmt.Errorf("synthesize %q: %w", word, err)
	}

	var best string
	bestProbability := 0.0
	for i := 0; i < words.Words(); i++ {
		candidate, err := words.Word(i)
		if err != nil {
			return false, err
		}
		p, err := m.MarginalProbability(sigma, candidate, kb)
		if err != nil {
			return false, fmt.Errorf("score %q against %q: %w", candidate, word, err)
		}
		if i == 0 || p > bestProbability {
			best, bestProbability = candidate, p
		}
	}
	return best == word, nil
}
