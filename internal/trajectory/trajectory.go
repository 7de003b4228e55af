// Package trajectory holds the sampled (x, y, t) path of a finger or stylus
// across a keyboard.
package trajectory

import (
	"fmt"
	"math"

	"swypesim/internal/keyboard"
	"swypesim/internal/model"
)

// Point is a single spatio-temporal sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T float64 `json:"t"`
}

// Trajectory is an ordered sequence of samples with non-decreasing T.
// The zero value is an empty trajectory ready for use.
type Trajectory struct {
	x, y, t []float64
}

func New() *Trajectory {
	return &Trajectory{}
}

// WithCapacity returns an empty trajectory with room for n samples.
func WithCapacity(n int) *Trajectory {
	return &Trajectory{
		x: make([]float64, 0, n),
		y: make([]float64, 0, n),
		t: make([]float64, 0, n),
	}
}

// FromPoints builds a trajectory by inserting each (x[i], y[i], t[i]) in turn,
// so the result is ordered by t regardless of input order.
func FromPoints(x, y, t []float64) (*Trajectory, error) {
	if len(x) != len(y) || len(x) != len(t) {
		return nil, fmt.Errorf("%w: sample sequences differ in length (x=%d y=%d t=%d)", model.ErrInvalidInput, len(x), len(y), len(t))
	}
	tr := WithCapacity(len(x))
	for i := range x {
		tr.AddPoint(x[i], y[i], t[i])
	}
	return tr, nil
}

func (tr *Trajectory) Length() int {
	return len(tr.x)
}

// AddPoint inserts a sample keeping t ascending. A sample whose t equals
// existing samples goes after them. It returns the new length.
func (tr *Trajectory) AddPoint(x, y, t float64) int {
	i := len(tr.t)
	for i > 0 && t < tr.t[i-1] {
		i--
	}
	tr.x = insertAt(tr.x, i, x)
	tr.y = insertAt(tr.y, i, y)
	tr.t = insertAt(tr.t, i, t)
	return len(tr.x)
}

func insertAt(s []float64, i int, v float64) []float64 {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func (tr *Trajectory) checkIndex(i int) error {
	if i < 0 || i >= len(tr.x) {
		return fmt.Errorf("%w: sample %d of %d", model.ErrIndexOutOfRange, i, len(tr.x))
	}
	return nil
}

func (tr *Trajectory) X(i int) (float64, error) {
	if err := tr.checkIndex(i); err != nil {
		return 0, err
	}
	return tr.x[i], nil
}

func (tr *Trajectory) Y(i int) (float64, error) {
	if err := tr.checkIndex(i); err != nil {
		return 0, err
	}
	return tr.y[i], nil
}

func (tr *Trajectory) T(i int) (float64, error) {
	if err := tr.checkIndex(i); err != nil {
		return 0, err
	}
	return tr.t[i], nil
}

func (tr *Trajectory) At(i int) (Point, error) {
	if err := tr.checkIndex(i); err != nil {
		return Point{}, err
	}
	return Point{X: tr.x[i], Y: tr.y[i], T: tr.t[i]}, nil
}

func (tr *Trajectory) First() (Point, error) {
	return tr.At(0)
}

// Last returns the final sample.
func (tr *Trajectory) Last() (Point, error) {
	return tr.At(len(tr.x) - 1)
}

// Points copies the samples out in index order.
func (tr *Trajectory) Points() []Point {
	out := make([]Point, len(tr.x))
	for i := range tr.x {
		out[i] = Point{X: tr.x[i], Y: tr.y[i], T: tr.t[i]}
	}
	return out
}

// SpatialLength is the summed Euclidean distance between consecutive samples.
func (tr *Trajectory) SpatialLength() float64 {
	l := 0.0
	for i := 1; i < len(tr.x); i++ {
		l += math.Hypot(tr.x[i]-tr.x[i-1], tr.y[i]-tr.y[i-1])
	}
	return l
}

// SegmentLength is the distance from sample i to sample i+1.
func (tr *Trajectory) SegmentLength(i int) (float64, error) {
	if err := tr.checkIndex(i); err != nil {
		return 0, err
	}
	if err := tr.checkIndex(i + 1); err != nil {
		return 0, err
	}
	return math.Hypot(tr.x[i+1]-tr.x[i], tr.y[i+1]-tr.y[i]), nil
}

func (tr *Trajectory) TemporalLength() (float64, error) {
	if len(tr.t) == 0 {
		return 0, fmt.Errorf("%w: empty trajectory has no duration", model.ErrIndexOutOfRange)
	}
	return tr.t[len(tr.t)-1] - tr.t[0], nil
}

// DeltaPhi is the signed change of heading at sample i. The path ends have no
// turning angle and report 0.
func (tr *Trajectory) DeltaPhi(i int) (float64, error) {
	if err := tr.checkIndex(i); err != nil {
		return 0, err
	}
	if i == 0 || i == len(tr.x)-1 {
		return 0, nil
	}
	oldPhi := math.Atan2(tr.y[i]-tr.y[i-1], tr.x[i]-tr.x[i-1])
	newPhi := math.Atan2(tr.y[i+1]-tr.y[i], tr.x[i+1]-tr.x[i])
	return newPhi - oldPhi, nil
}

// TotalTurning sums the signed heading change along the path, each turn
// wrapped into (-pi, pi], so a closed loop contributes a full 2*pi. Zero-length
// segments have no heading and are skipped.
func (tr *Trajectory) TotalTurning() float64 {
	total := 0.0
	var prev float64
	seen := false
	for i := 1; i < len(tr.x); i++ {
		dx, dy := tr.x[i]-tr.x[i-1], tr.y[i]-tr.y[i-1]
		if dx == 0 && dy == 0 {
			continue
		}
		heading := math.Atan2(dy, dx)
		if seen {
			total += wrapAngle(heading - prev)
		}
		prev, seen = heading, true
	}
	return total
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// StringForm reads the keys a trajectory passes over. Consecutive samples
// inside the same key yield one character; samples outside every key yield
// nothing.
func (tr *Trajectory) StringForm(kb keyboard.Keyboard) string {
	var (
		out  []rune
		last keyboard.Key
	)
	for i := range tr.x {
		if last != nil && last.IsInside(tr.x[i], tr.y[i]) {
			continue
		}
		for j := 0; j < kb.NKeys(); j++ {
			c := kb.CharN(j)
			key, ok := kb.GetKey(c)
			if !ok || !key.IsInside(tr.x[i], tr.y[i]) {
				continue
			}
			out = append(out, c)
			last = key
			break
		}
	}
	return string(out)
}

// Slice copies samples [from, to).
func (tr *Trajectory) Slice(from, to int) (*Trajectory, error) {
	if from < 0 || to > len(tr.x) || from > to {
		return nil, fmt.Errorf("%w: slice [%d:%d] of %d", model.ErrIndexOutOfRange, from, to, len(tr.x))
	}
	return &Trajectory{
		x: append([]float64(nil), tr.x[from:to]...),
		y: append([]float64(nil), tr.y[from:to]...),
		t: append([]float64(nil), tr.t[from:to]...),
	}, nil
}

func (tr *Trajectory) Clone() *Trajectory {
	c, _ := tr.Slice(0, len(tr.x))
	return c
}

// Record converts the trajectory into its persisted form.
func (tr *Trajectory) Record(id, word string) model.TrajectoryRecord {
	return model.TrajectoryRecord{
		ID:   id,
		Word: word,
		X:    append([]float64(nil), tr.x...),
		Y:    append([]float64(nil), tr.y...),
		T:    append([]float64(nil), tr.t...),
	}
}

// FromRecord restores a trajectory from its persisted form.
func FromRecord(rec model.TrajectoryRecord) (*Trajectory, error) {
	return FromPoints(rec.X, rec.Y, rec.T)
}
