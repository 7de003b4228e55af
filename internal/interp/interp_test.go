package interp

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swypesim/internal/model"
	"swypesim/internal/trajectory"
)

var families = map[string]Func{
	"spatial":       Spatial,
	"hermite":       HermiteCubicSpline,
	"monotonic":     MonotonicCubicSpline,
	"cubic":         CubicSpline,
	"modcubic":      ModCubicSpline,
	"bezier":        Bezier,
	"bezier-sloppy": BezierSloppy,
}

func path(t *testing.T, pts ...trajectory.Point) *trajectory.Trajectory {
	t.Helper()
	tr := trajectory.New()
	for _, p := range pts {
		tr.AddPoint(p.X, p.Y, p.T)
	}
	return tr
}

func randomPath(rng *rand.Rand, k int) *trajectory.Trajectory {
	tr := trajectory.New()
	for i := 0; i < k; i++ {
		tr.AddPoint(rng.Float64()*10, rng.Float64()*3, float64(i))
	}
	return tr
}

func TestEveryFamilyKeepsEndpointsAndLength(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for name, fn := range families {
		for k := 1; k <= 8; k++ {
			for _, nsteps := range []int{2, 3, 7, 25, 50, 101} {
				in := randomPath(rng, k)
				out, err := fn(in, nsteps)
				require.NoError(t, err, "%s k=%d n=%d", name, k, nsteps)
				require.Equal(t, nsteps, out.Length(), "%s k=%d n=%d", name, k, nsteps)

				inFirst, _ := in.First()
				inLast, _ := in.Last()
				outFirst, _ := out.First()
				outLast, _ := out.Last()
				require.Equal(t, inFirst, outFirst, "%s k=%d n=%d first", name, k, nsteps)
				require.Equal(t, inLast, outLast, "%s k=%d n=%d last", name, k, nsteps)

				for i := 1; i < out.Length(); i++ {
					prev, _ := out.At(i - 1)
					cur, _ := out.At(i)
					require.LessOrEqual(t, prev.T, cur.T, "%s k=%d n=%d t order at %d", name, k, nsteps, i)
					require.False(t, math.IsNaN(cur.X) || math.IsNaN(cur.Y), "%s produced NaN", name)
				}
			}
		}
	}
}

func TestTwoWaypointsMatchSpatial(t *testing.T) {
	in := path(t, trajectory.Point{X: 1, Y: 2, T: 0}, trajectory.Point{X: 4, Y: 6, T: 3})
	want, err := Spatial(in, 11)
	require.NoError(t, err)
	for name, fn := range families {
		got, err := fn(in, 11)
		require.NoError(t, err)
		if diff := cmp.Diff(want.Points(), got.Points()); diff != "" {
			t.Fatalf("%s differs from spatial (-want +got):\n%s", name, diff)
		}
	}
}

func TestSpatialLShape(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 1, Y: 0, T: 1},
		trajectory.Point{X: 1, Y: 1, T: 2},
	)
	out, err := Spatial(in, 5)
	require.NoError(t, err)

	want := []trajectory.Point{
		{X: 0, Y: 0, T: 0},
		{X: 0.5, Y: 0, T: 0.5},
		{X: 1, Y: 0, T: 1},
		{X: 1, Y: 0.5, T: 1.5},
		{X: 1, Y: 1, T: 2},
	}
	if diff := cmp.Diff(want, out.Points(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("unexpected resampling (-want +got):\n%s", diff)
	}
}

func TestSpatialZeroLengthSegmentSplitsEvenly(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 0, Y: 0, T: 1},
		trajectory.Point{X: 2, Y: 0, T: 2},
	)
	out, err := Spatial(in, 3)
	require.NoError(t, err)
	mid, _ := out.At(1)
	assert.InDelta(t, 1.0, mid.X, 1e-12)
	assert.InDelta(t, 1.5, mid.T, 1e-12)
}

func TestDegenerateRequests(t *testing.T) {
	for name, fn := range families {
		_, err := fn(nil, 5)
		assert.True(t, errors.Is(err, model.ErrInvalidInput), "%s nil", name)

		_, err = fn(trajectory.New(), 5)
		assert.True(t, errors.Is(err, model.ErrInvalidInput), "%s empty", name)

		in := path(t, trajectory.Point{X: 0, T: 0}, trajectory.Point{X: 1, T: 1}, trajectory.Point{X: 1, Y: 1, T: 2})
		_, err = fn(in, 0)
		assert.True(t, errors.Is(err, model.ErrInvalidInput), "%s zero steps", name)

		one, err := fn(in, 1)
		require.NoError(t, err)
		require.Equal(t, 1, one.Length())
		p, _ := one.First()
		assert.Equal(t, trajectory.Point{X: 0, T: 0}, p)
	}
}

func TestSingleWaypointReplicates(t *testing.T) {
	in := path(t, trajectory.Point{X: 3, Y: 1, T: 4})
	for name, fn := range families {
		out, err := fn(in, 6)
		require.NoError(t, err, name)
		require.Equal(t, 6, out.Length(), name)
		for _, p := range out.Points() {
			assert.Equal(t, trajectory.Point{X: 3, Y: 1, T: 4}, p, name)
		}
	}
}

func TestZeroArcLengthDoesNotMove(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 2, Y: 2, T: 0},
		trajectory.Point{X: 2, Y: 2, T: 1},
		trajectory.Point{X: 2, Y: 2, T: 2},
		trajectory.Point{X: 2, Y: 2, T: 4},
	)
	for name, fn := range families {
		out, err := fn(in, 5)
		require.NoError(t, err, name)
		require.Equal(t, 5, out.Length(), name)
		for i, p := range out.Points() {
			assert.Equal(t, 2.0, p.X, name)
			assert.Equal(t, 2.0, p.Y, name)
			assert.InDelta(t, float64(i), p.T, 1e-12, name)
		}
	}
}

func TestHermiteSamplesEvenlyInTime(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 3, Y: 1, T: 1},
		trajectory.Point{X: 4, Y: 0, T: 3},
	)
	out, err := HermiteCubicSpline(in, 7)
	require.NoError(t, err)
	for i, p := range out.Points() {
		assert.InDelta(t, 0.5*float64(i), p.T, 1e-12)
	}
	// Sample at t=1 lands on the middle waypoint.
	mid, _ := out.At(2)
	assert.InDelta(t, 3.0, mid.X, 1e-12)
	assert.InDelta(t, 1.0, mid.Y, 1e-12)
}

func TestMonotonicSplineDoesNotOvershoot(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 0.1, Y: 1, T: 1},
		trajectory.Point{X: 0.2, Y: 1, T: 2},
		trajectory.Point{X: 10, Y: 0, T: 3},
	)
	out, err := MonotonicCubicSpline(in, 61)
	require.NoError(t, err)
	prevX := math.Inf(-1)
	for _, p := range out.Points() {
		assert.GreaterOrEqual(t, p.X, prevX-1e-12)
		assert.GreaterOrEqual(t, p.Y, -1e-12)
		assert.LessOrEqual(t, p.Y, 1+1e-12)
		prevX = p.X
	}
}

func TestHermiteTangentsMonotonicLimiter(t *testing.T) {
	ts := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 1, 0}

	plain := hermiteTangents(ts, ys, false)
	assert.Equal(t, []float64{1, 0.5, -0.5, -1}, plain)

	limited := hermiteTangents(ts, ys, true)
	// Flat run and extrema are zeroed.
	assert.Equal(t, 0.0, limited[1])
	assert.Equal(t, 0.0, limited[2])
}

func TestSplineDerivativesOfLineAreConstant(t *testing.T) {
	d := splineDerivatives([]float64{0, 1, 2, 3, 4, 5}, false)
	for i, v := range d {
		assert.InDelta(t, 1.0, v, 1e-12, "derivative %d", i)
	}
}

func TestModSplineDerivativesMatchEndSecants(t *testing.T) {
	v := []float64{0, 2, 3, 7, 8}
	d := splineDerivatives(v, true)
	assert.InDelta(t, 2.0, d[1], 1e-12)
	assert.InDelta(t, 1.0, d[3], 1e-12)
}

func TestModCubicSplineFirstAndLastSegmentsAreStraight(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 4, Y: 0, T: 1},
		trajectory.Point{X: 4, Y: 4, T: 2},
		trajectory.Point{X: 8, Y: 4, T: 3},
	)
	out, err := ModCubicSpline(in, 40)
	require.NoError(t, err)
	for _, p := range out.Points() {
		if p.T <= 1 {
			assert.InDelta(t, 0.0, p.Y, 1e-12, "first segment leaves the line at t=%v", p.T)
		}
		if p.T >= 2 {
			assert.InDelta(t, 4.0, p.Y, 1e-12, "last segment leaves the line at t=%v", p.T)
		}
	}
}

func TestCubicSplineOfCollinearPointsStaysOnLine(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 1, T: 0},
		trajectory.Point{X: 1, Y: 1, T: 1},
		trajectory.Point{X: 2, Y: 1, T: 2},
		trajectory.Point{X: 3, Y: 1, T: 3},
	)
	out, err := CubicSpline(in, 13)
	require.NoError(t, err)
	for i, p := range out.Points() {
		assert.InDelta(t, 1.0, p.Y, 1e-12)
		assert.InDelta(t, 0.25*float64(i), p.X, 1e-9)
	}
}

func TestAllocateStepsSumsExactly(t *testing.T) {
	counts := allocateSteps([]float64{1, 1, 1}, 10)
	assert.Equal(t, []int{4, 3, 3}, counts)

	counts = allocateSteps([]float64{3, 0, 1}, 7)
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 7, total)
	assert.Equal(t, 0, counts[1])
}

func TestBezierPassesThroughControlMidpoints(t *testing.T) {
	in := path(t,
		trajectory.Point{X: 0, Y: 0, T: 0},
		trajectory.Point{X: 4, Y: 0, T: 1},
		trajectory.Point{X: 4, Y: 4, T: 2},
	)
	out, err := Bezier(in, 200)
	require.NoError(t, err)

	// Curve apex for quarter-distance control points.
	best := math.Inf(1)
	for _, p := range out.Points() {
		best = math.Min(best, math.Hypot(p.X-3.75, p.Y-0.25))
	}
	assert.Less(t, best, 0.05)

	sloppy, err := BezierSloppy(in, 200)
	require.NoError(t, err)
	best = math.Inf(1)
	for _, p := range sloppy.Points() {
		best = math.Min(best, math.Hypot(p.X-3.5, p.Y-0.5))
	}
	assert.Less(t, best, 0.05)
}

func TestQuadraticBezierEndpoints(t *testing.T) {
	p0 := trajectory.Point{X: 0, Y: 0, T: 0}
	p1 := trajectory.Point{X: 1, Y: 2, T: 1}
	p2 := trajectory.Point{X: 2, Y: 0, T: 2}
	pts := quadraticBezier(p0, p1, p2, 4)
	require.Len(t, pts, 5)
	assert.Equal(t, p0, pts[0])
	assert.Equal(t, p2, pts[4])
	assert.InDelta(t, 1.0, pts[2].X, 1e-12)
	assert.InDelta(t, 1.0, pts[2].Y, 1e-12)
	assert.InDelta(t, 1.0, pts[2].T, 1e-12)
}

func TestStitchDropsSharedEndpoints(t *testing.T) {
	a := []trajectory.Point{{X: 0}, {X: 1}}
	b := []trajectory.Point{{X: 1}, {X: 2}, {X: 3}}
	c := []trajectory.Point{{X: 3}, {X: 4}}
	got := stitch([][]trajectory.Point{a, b, c})
	assert.Equal(t, []trajectory.Point{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}, got)
}

func TestByName(t *testing.T) {
	for _, name := range Methods() {
		fn, err := ByName(name)
		require.NoError(t, err)
		require.NotNil(t, fn)
	}
	assert.Len(t, Methods(), 7)

	_, err := ByName("spline9000")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}
