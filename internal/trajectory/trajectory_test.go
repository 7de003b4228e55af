package trajectory

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swypesim/internal/keyboard"
	"swypesim/internal/model"
)

func mustPoints(t *testing.T, pts ...Point) *Trajectory {
	t.Helper()
	tr := New()
	for _, p := range pts {
		tr.AddPoint(p.X, p.Y, p.T)
	}
	return tr
}

func TestAddPointKeepsTimeOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := New()
	for i := 0; i < 200; i++ {
		n := tr.AddPoint(rng.Float64(), rng.Float64(), math.Floor(rng.Float64()*20))
		require.Equal(t, i+1, n)
	}
	for i := 1; i < tr.Length(); i++ {
		prev, err := tr.T(i - 1)
		require.NoError(t, err)
		cur, err := tr.T(i)
		require.NoError(t, err)
		require.LessOrEqual(t, prev, cur, "t decreases at %d", i)
	}
}

func TestAddPointTiesKeepInsertionOrder(t *testing.T) {
	tr := New()
	tr.AddPoint(1, 0, 5)
	tr.AddPoint(2, 0, 5)
	tr.AddPoint(0, 0, 1)
	tr.AddPoint(3, 0, 5)

	want := []Point{{X: 0, T: 1}, {X: 1, T: 5}, {X: 2, T: 5}, {X: 3, T: 5}}
	if diff := cmp.Diff(want, tr.Points()); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestAccessorsRejectOutOfRange(t *testing.T) {
	tr := mustPoints(t, Point{X: 1, Y: 2, T: 3})

	for _, i := range []int{-1, 1, 100} {
		_, err := tr.X(i)
		assert.True(t, errors.Is(err, model.ErrIndexOutOfRange), "X(%d)", i)
		_, err = tr.Y(i)
		assert.True(t, errors.Is(err, model.ErrIndexOutOfRange), "Y(%d)", i)
		_, err = tr.T(i)
		assert.True(t, errors.Is(err, model.ErrIndexOutOfRange), "T(%d)", i)
		_, err = tr.DeltaPhi(i)
		assert.True(t, errors.Is(err, model.ErrIndexOutOfRange), "DeltaPhi(%d)", i)
	}

	_, err := New().Last()
	assert.True(t, errors.Is(err, model.ErrIndexOutOfRange))
	_, err = New().TemporalLength()
	assert.True(t, errors.Is(err, model.ErrIndexOutOfRange))
}

func TestLastAndFirst(t *testing.T) {
	tr := mustPoints(t, Point{X: 0, Y: 0, T: 0}, Point{X: 1, Y: 0, T: 1}, Point{X: 1, Y: 1, T: 2})

	first, err := tr.First()
	require.NoError(t, err)
	assert.Equal(t, Point{X: 0, Y: 0, T: 0}, first)

	last, err := tr.Last()
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 1, T: 2}, last)

	d, err := tr.TemporalLength()
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)
}

func TestSpatialLength(t *testing.T) {
	assert.Equal(t, 0.0, New().SpatialLength())
	assert.Equal(t, 0.0, mustPoints(t, Point{X: 3, Y: 4}).SpatialLength())

	tr := mustPoints(t, Point{X: 0, Y: 0, T: 0}, Point{X: 3, Y: 4, T: 1}, Point{X: 3, Y: 10, T: 2})
	assert.InDelta(t, 11.0, tr.SpatialLength(), 1e-12)

	seg, err := tr.SegmentLength(0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, seg, 1e-12)
	_, err = tr.SegmentLength(2)
	assert.True(t, errors.Is(err, model.ErrIndexOutOfRange))
}

func TestSpatialLengthIsAdditive(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	tr := New()
	for i := 0; i < 40; i++ {
		tr.AddPoint(rng.NormFloat64(), rng.NormFloat64(), float64(i))
	}
	whole := tr.SpatialLength()
	for split := 0; split < tr.Length(); split++ {
		head, err := tr.Slice(0, split+1)
		require.NoError(t, err)
		tail, err := tr.Slice(split, tr.Length())
		require.NoError(t, err)
		assert.InDelta(t, whole, head.SpatialLength()+tail.SpatialLength(), 1e-9, "split at %d", split)
	}
}

func TestDeltaPhi(t *testing.T) {
	tr := mustPoints(t, Point{X: 0, Y: 0, T: 0}, Point{X: 1, Y: 0, T: 1}, Point{X: 1, Y: 1, T: 2}, Point{X: 0, Y: 1, T: 3})

	first, err := tr.DeltaPhi(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, first)

	last, err := tr.DeltaPhi(tr.Length() - 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, last)

	corner, err := tr.DeltaPhi(1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, corner, 1e-12)

	assert.InDelta(t, math.Pi, tr.TotalTurning(), 1e-12)
}

func TestTotalTurningCountsFullLoop(t *testing.T) {
	straight := mustPoints(t, Point{X: 0, Y: 0, T: 0}, Point{X: 1, Y: 0, T: 1}, Point{X: 2, Y: 0, T: 2})
	assert.InDelta(t, 0, straight.TotalTurning(), 1e-12)

	// Same path with a counter-clockwise circle drawn at (1, 0).
	const steps = 16
	looped := New()
	looped.AddPoint(0, 0, 0)
	looped.AddPoint(1, 0, 1)
	for j := 1; j < steps; j++ {
		theta := 2 * math.Pi * float64(j) / steps
		looped.AddPoint(1+0.25*math.Sin(theta), 0.25-0.25*math.Cos(theta), 1+float64(j)/steps)
	}
	looped.AddPoint(1, 0, 2)
	looped.AddPoint(2, 0, 3)
	assert.InDelta(t, 2*math.Pi, looped.TotalTurning(), 1e-9)
}

func TestTotalTurningWrapsSharpReversals(t *testing.T) {
	// Heading goes from just under +pi to just over -pi: a small left turn.
	tr := mustPoints(t, Point{X: 1, Y: 0, T: 0}, Point{X: 0, Y: 0.01, T: 1}, Point{X: -1, Y: 0, T: 2})
	raw, err := tr.DeltaPhi(1)
	require.NoError(t, err)
	assert.Greater(t, math.Abs(raw), math.Pi)
	assert.Less(t, math.Abs(tr.TotalTurning()), 0.1)
}

func TestTotalTurningSkipsRepeatedSamples(t *testing.T) {
	tr := mustPoints(t,
		Point{X: 0, Y: 0, T: 0},
		Point{X: 1, Y: 0, T: 1},
		Point{X: 1, Y: 0, T: 2},
		Point{X: 1, Y: -1, T: 3},
	)
	assert.InDelta(t, -math.Pi/2, tr.TotalTurning(), 1e-12)
}

func TestDeltaPhiEndsAreZeroForSinglePoint(t *testing.T) {
	tr := mustPoints(t, Point{X: 1, Y: 1})
	phi, err := tr.DeltaPhi(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, phi)
}

func TestStringForm(t *testing.T) {
	kb := keyboard.QWERTY()
	// h(5.75,1.5) -> i(7.5,0.5), dwelling inside each key and crossing u/j area.
	tr := mustPoints(t,
		Point{X: 5.75, Y: 1.5, T: 0},
		Point{X: 5.80, Y: 1.4, T: 1},
		Point{X: 6.60, Y: 1.1, T: 2},
		Point{X: 7.40, Y: 0.6, T: 3},
		Point{X: 7.50, Y: 0.5, T: 4},
	)
	assert.Equal(t, "hji", tr.StringForm(kb))
}

func TestStringFormSkipsSamplesOutsideKeys(t *testing.T) {
	kb := keyboard.QWERTY()
	tr := mustPoints(t,
		Point{X: -5, Y: -5, T: 0},
		Point{X: 0.5, Y: 0.5, T: 1},
		Point{X: 50, Y: 50, T: 2},
		Point{X: 0.5, Y: 0.5, T: 3},
	)
	// Leaving the keyboard does not reset the last emitted key.
	assert.Equal(t, "q", tr.StringForm(kb))
}

func TestStringFormEmitsFirstLayoutKeyAfterOffKeyStart(t *testing.T) {
	kb := keyboard.QWERTY()
	require.Equal(t, 'q', kb.CharN(0))
	tr := mustPoints(t,
		Point{X: -5, Y: -5, T: 0},
		Point{X: 0.5, Y: 0.5, T: 1},
		Point{X: 1.5, Y: 0.5, T: 2},
	)
	// No key is current before the first emission, so q is not mistaken for a dwell.
	assert.Equal(t, "qw", tr.StringForm(kb))
}

func TestRecordRoundTrip(t *testing.T) {
	tr := mustPoints(t, Point{X: 0, Y: 0, T: 0}, Point{X: 1.5, Y: -2, T: 0.25})
	rec := tr.Record("trace-1", "hi")
	assert.Equal(t, "trace-1", rec.ID)
	assert.Equal(t, "hi", rec.Word)

	back, err := FromRecord(rec)
	require.NoError(t, err)
	if diff := cmp.Diff(tr.Points(), back.Points(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = FromPoints([]float64{1}, nil, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestCloneIsIndependent(t *testing.T) {
	tr := mustPoints(t, Point{X: 1, T: 1})
	c := tr.Clone()
	c.AddPoint(2, 0, 2)
	assert.Equal(t, 1, tr.Length())
	assert.Equal(t, 2, c.Length())
}
