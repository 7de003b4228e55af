// Package inputmodel synthesizes noisy swipe traces for words and scores how
// well an observed trace matches a candidate word.
package inputmodel

import (
	"fmt"
	"math"

	"swypesim/internal/interp"
	"swypesim/internal/keyboard"
	"swypesim/internal/model"
	"swypesim/internal/nn"
	"swypesim/internal/trajectory"
)

// InputModel generates and scores traces for words on a keyboard. A model
// value owns its random generator and must not be shared between goroutines;
// use Reseed to hand each worker its own copy.
type InputModel interface {
	RandomVector(word string, kb keyboard.Keyboard) (*trajectory.Trajectory, error)
	Distance(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error)
	MarginalProbability(observed *trajectory.Trajectory, word string, kb keyboard.Keyboard) (float64, error)
	FixedLength() bool
	Reseed(seed int64) InputModel
}

type Kind string

const (
	KindInterpolation Kind = "interpolation"
	KindNeural        Kind = "neural"
)

const (
	DefaultVectorLength = 50
	DefaultScale        = 0.5
	DefaultLoopRadius   = 0.25
	DefaultMethod       = string(interp.MethodBezier)

	loopSteps = 8
)

// Params configures both model variants. XScale and YScale are the noise
// standard deviations in key units and also normalise trace differences.
// Zero MaxDistance and MaxSigmas disable the corresponding caps.
type Params struct {
	VectorLength int     `json:"vector_length" yaml:"vector_length" toml:"vector_length"`
	XScale       float64 `json:"x_scale" yaml:"x_scale" toml:"x_scale"`
	YScale       float64 `json:"y_scale" yaml:"y_scale" toml:"y_scale"`
	Correlation  float64 `json:"correlation" yaml:"correlation" toml:"correlation"`
	MaxDistance  float64 `json:"max_distance" yaml:"max_distance" toml:"max_distance"`
	MaxSigmas    float64 `json:"max_sigmas" yaml:"max_sigmas" toml:"max_sigmas"`
	Loop         bool    `json:"loop" yaml:"loop" toml:"loop"`
	LoopRadius   float64 `json:"loop_radius" yaml:"loop_radius" toml:"loop_radius"`
	Method       string  `json:"method" yaml:"method" toml:"method"`
	Seed         int64   `json:"seed" yaml:"seed" toml:"seed"`
}

func DefaultParams() Params {
	return Params{
		VectorLength: DefaultVectorLength,
		XScale:       DefaultScale,
		YScale:       DefaultScale,
		LoopRadius:   DefaultLoopRadius,
		Method:       DefaultMethod,
		Seed:         1,
	}
}

// WithDefaults fills unset fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.VectorLength == 0 {
		p.VectorLength = d.VectorLength
	}
	if p.XScale == 0 {
		p.XScale = d.XScale
	}
	if p.YScale == 0 {
		p.YScale = d.YScale
	}
	if p.LoopRadius == 0 {
		p.LoopRadius = d.LoopRadius
	}
	if p.Method == "" {
		p.Method = d.Method
	}
	return p
}

func (p Params) Validate() error {
	switch {
	case p.VectorLength < 2:
		return fmt.Errorf("%w: vector length must be at least 2, got %d", model.ErrInvalidInput, p.VectorLength)
	case p.XScale <= 0 || p.YScale <= 0:
		return fmt.Errorf("%w: scales must be positive, got x=%g y=%g", model.ErrInvalidInput, p.XScale, p.YScale)
	case math.Abs(p.Correlation) >= 1:
		return fmt.Errorf("%w: correlation must lie in (-1, 1), got %g", model.ErrInvalidInput, p.Correlation)
	case p.MaxDistance < 0 || p.MaxSigmas < 0:
		return fmt.Errorf("%w: caps must not be negative", model.ErrInvalidInput)
	case p.LoopRadius < 0:
		return fmt.Errorf("%w: loop radius must not be negative", model.ErrInvalidInput)
	}
	if _, err := interp.ByName(p.Method); err != nil {
		return err
	}
	return nil
}

// New builds a model of the given kind. The artifact path is only read for
// the neural kind.
func New(kind string, params Params, artifact string) (InputModel, error) {
	switch Kind(kind) {
	case "", KindInterpolation:
		return NewInterpolationModel(params)
	case KindNeural:
		return NewNeuralNetworkModel(artifact, params)
	default:
		return nil, fmt.Errorf("%w: unknown input model %q", model.ErrInvalidInput, kind)
	}
}

// IdealPath returns the key-centre waypoints of word with t set to the letter
// index. With loop set, a repeated letter circles once through the key centre
// so the double letter leaves a visible mark.
func IdealPath(word string, kb keyboard.Keyboard, loop bool, radius float64) (*trajectory.Trajectory, error) {
	if word == "" {
		return nil, fmt.Errorf("%w: empty word", model.ErrInvalidInput)
	}
	out := trajectory.New()
	var prev rune
	i := 0
	for _, c := range word {
		key, ok := kb.GetKey(c)
		if !ok {
			return nil, fmt.Errorf("%w: no key for %q in %q", model.ErrInvalidInput, c, word)
		}
		cx, cy := key.Center()
		if loop && i > 0 && c == prev && radius > 0 {
			// Circle of the given radius whose lowest point is the key centre.
			for j := 1; j < loopSteps; j++ {
				theta := 2 * math.Pi * float64(j) / loopSteps
				out.AddPoint(
					cx+radius*math.Sin(theta),
					cy-radius+radius*math.Cos(theta),
					float64(i-1)+float64(j)/loopSteps,
				)
			}
		}
		out.AddPoint(cx, cy, float64(i))
		prev = c
		i++
	}
	return out, nil
}

// features returns the normalised per-sample differences between ideal and
// observed, both resampled to n samples: u along x, w the decorrelated y
// component. u*u + w*w is the squared Mahalanobis distance of each sample.
func features(p Params, ideal, observed *trajectory.Trajectory) (u, w []float64, err error) {
	a, err := interp.Spatial(ideal, p.VectorLength)
	if err != nil {
		return nil, nil, fmt.Errorf("resample ideal: %w", err)
	}
	b, err := interp.Spatial(observed, p.VectorLength)
	if err != nil {
		return nil, nil, fmt.Errorf("resample observed: %w", err)
	}

	n := p.VectorLength
	ax, ay := axes(a)
	bx, by := axes(b)
	dx, err := nn.VectorDifference(ax, bx)
	if err != nil {
		return nil, nil, err
	}
	dy, err := nn.VectorDifference(ay, by)
	if err != nil {
		return nil, nil, err
	}

	rho := p.Correlation
	norm := math.Sqrt(1 - rho*rho)
	u = make([]float64, n)
	w = make([]float64, n)
	for i := 0; i < n; i++ {
		x, y := capDisplacement(dx[i], dy[i], p.MaxDistance)
		u[i] = x / p.XScale
		w[i] = (y/p.YScale - rho*u[i]) / norm
		if p.MaxSigmas > 0 {
			u[i] = nn.SaturationWithSpread(u[i], p.MaxSigmas)
			w[i] = nn.SaturationWithSpread(w[i], p.MaxSigmas)
		}
	}
	return u, w, nil
}

func axes(tr *trajectory.Trajectory) (xs, ys []float64) {
	pts := tr.Points()
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// capDisplacement shrinks (dx, dy) onto the circle of radius limit when it
// lies outside it. A zero limit disables the cap.
func capDisplacement(dx, dy, limit float64) (float64, float64) {
	if limit <= 0 {
		return dx, dy
	}
	d := math.Hypot(dx, dy)
	if d <= limit {
		return dx, dy
	}
	return dx * limit / d, dy * limit / d
}
