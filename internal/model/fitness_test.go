package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitnessResultCombineWeightedMean(t *testing.T) {
	a := NewFitnessResult(10, 0.8, 0.05)
	b := NewFitnessResult(10, 0.6, 0.05)

	got := a.Combine(b)
	require.Equal(t, 20, got.Iterations)
	assert.InDelta(t, 0.7, got.Fitness, 1e-12)
	assert.InDelta(t, 0.05, got.Error, 1e-12)
}

func TestFitnessResultCombineUnevenBatches(t *testing.T) {
	a := NewFitnessResult(30, 1.0, 0.0)
	b := NewFitnessResult(10, 0.0, 0.2)

	got := a.Combine(b)
	require.Equal(t, 40, got.Iterations)
	assert.InDelta(t, 0.75, got.Fitness, 1e-12)
	assert.InDelta(t, 0.05, got.Error, 1e-12)
}

func TestFitnessResultCombineZeroValue(t *testing.T) {
	var zero FitnessResult
	r := NewFitnessResult(5, 0.4, 0.1)

	assert.Equal(t, r, zero.Combine(r))
	assert.Equal(t, r, r.Combine(zero))
	assert.Equal(t, FitnessResult{}, zero.Combine(zero))
}

func TestFitnessResultCombineCommutativeAndAssociative(t *testing.T) {
	a := NewFitnessResult(7, 0.3, 0.02)
	b := NewFitnessResult(11, 0.9, 0.04)
	c := NewFitnessResult(2, 0.5, 0.30)

	ab := a.Combine(b)
	ba := b.Combine(a)
	assert.Equal(t, ab.Iterations, ba.Iterations)
	assert.InDelta(t, ab.Fitness, ba.Fitness, 1e-12)
	assert.InDelta(t, ab.Error, ba.Error, 1e-12)

	left := a.Combine(b).Combine(c)
	right := a.Combine(b.Combine(c))
	assert.Equal(t, left.Iterations, right.Iterations)
	assert.InDelta(t, left.Fitness, right.Fitness, 1e-12)
	assert.InDelta(t, left.Error, right.Error, 1e-12)

	all := CombineAll(a, b, c)
	assert.Equal(t, 20, all.Iterations)
	assert.InDelta(t, left.Fitness, all.Fitness, 1e-12)
}

func TestFitnessResultFromCounts(t *testing.T) {
	r := FitnessResultFromCounts(8, 10)
	assert.Equal(t, 10, r.Iterations)
	assert.InDelta(t, 0.8, r.Fitness, 1e-12)
	assert.InDelta(t, 0.1264911064, r.Error, 1e-9)

	assert.Equal(t, FitnessResult{}, FitnessResultFromCounts(0, 0))

	perfect := FitnessResultFromCounts(4, 4)
	assert.Equal(t, 1.0, perfect.Fitness)
	assert.Equal(t, 0.0, perfect.Error)
}
