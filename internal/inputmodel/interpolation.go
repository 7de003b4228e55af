package inputmodel

import (
	"fmt"
	"math"
	"math/rand"

	"swypesim/internal/interp"
	"swypesim/internal/keyboard"
	"swypesim/internal/nn"
	"swypesim/internal/trajectory"
)

// InterpolationModel draws traces by interpolating the key-centre path of a
// word and adding bivariate Gaussian noise to every sample. Distances are the
// RMS Mahalanobis distance under the same noise model.
type InterpolationModel struct {
	params Params
	interp interp.Func
	rng    *rand.Rand
}

func NewInterpolationModel(params Params) (*InterpolationModel, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	fn, err := interp.ByName(params.Method)
	if err != nil {
		return nil, err
	}
	return &InterpolationModel{
		params: params,
		interp: fn,
		rng:    rand.New(rand.NewSource(params.Seed)),
	}, nil
}

func (m *InterpolationModel) Params() Params {
	return m.params
}

// WithSeed returns a copy with an independent generator.
func (m *InterpolationModel) WithSeed(seed int64) *InterpolationModel {
	cp := *m
	cp.params.Seed = seed
	cp.rng = rand.New(rand.NewSource(seed))
	return &cp
}

func (m *InterpolationModel) Reseed(seed int64) InputModel {
	return m.WithSeed(seed)
}

// FixedLength always reports true: every trace is resampled to VectorLength,
// which Validate requires to be at least 2. Both the interpolation and the
// neural variant share this, so callers may size feature buffers up front.
func (m *InterpolationModel) FixedLength() bool {
	return true
}

// IdealVector is the noise-free trace of word.
func (m *InterpolationModel) IdealVector(word string, kb keyboard.Keyboard) (*trajectory.Trajectory, error) {
	path, err := IdealPath(word, kb, m.params.Loop, m.params.LoopRadius)
	if err != nil {
		return nil, err
	}
	out, err := m.interp(path, m.params.VectorLength)
	if err != nil {
		return nil, fmt.Errorf("interpolate %q: %w", word, err)
	}
	return out, nil
}

func (m *InterpolationModel) RandomVector(word string, kb keyboard.Keyboard) (*trajectory.Trajectory, error) {
	ideal, err := m.IdealVector(word, kb)
	if err != nil {
		return nil, err
	}

	p := m.params
	rho := p.Correlation
	norm := math.Sqrt(1 - rho*rho)
	out := trajectory.WithCapacity(ideal.Length())
	for _, pt := range ideal.Points() {
		z1 := m.draw()
		z2 := m.draw()
		dx, dy := capDisplacement(p.XScale*z1, p.YScale*(rho*z1+norm*z2), p.MaxDistance)
		out.AddPoint(pt.X+dx, pt.Y+dy, pt.T)
	}
	return out, nil
}

// draw returns a standard normal sample, capped at MaxSigmas when set.
func (m *InterpolationModel) draw() float64 {
	z := m.rng.NormFloat64()
	if m.params.MaxSigmas > 0 {
		z = nn.SaturationWithSpread(z, m.params.MaxSigmas)
	}
	return z
}

func (m *InterpolationModel) Distance(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error) {
	ideal, err := m.IdealVector(word, kb)
	if err != nil {
		return 0, err
	}
	u, w, err := features(m.params, ideal, observed)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range u {
		sum += u[i]*u[i] + w[i]*w[i]
	}
	return math.Sqrt(sum / float64(len(u))), nil
}

// MarginalProbability is the Gaussian kernel of the distance, exp(-d²/2).
func (m *InterpolationModel) MarginalProbability(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error) {
	d, err := m.Distance(observed, word, kb)
	if err != nil {
		return 0, err
	}
	return math.Exp(-d * d / 2), nil
}
