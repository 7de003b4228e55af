package interp

import (
	"math"

	"swypesim/internal/trajectory"
)

// Cubic Hermite basis functions.
func h00(s float64) float64 { return 2*s*s*s - 3*s*s + 1 }
func h10(s float64) float64 { return s*s*s - 2*s*s + s }
func h01(s float64) float64 { return -2*s*s*s + 3*s*s }
func h11(s float64) float64 { return s*s*s - s*s }

// HermiteCubicSpline interpolates each axis against time with tangents taken
// as the mean of the neighbouring secants. Samples are spaced evenly in time.
func HermiteCubicSpline(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	return hermiteBase(iv, nsteps, false)
}

// MonotonicCubicSpline is HermiteCubicSpline with Fritsch-Carlson tangent
// limiting, so the curve never overshoots between monotone waypoints.
func MonotonicCubicSpline(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	return hermiteBase(iv, nsteps, true)
}

func hermiteBase(iv *trajectory.Trajectory, nsteps int, monotonic bool) (*trajectory.Trajectory, error) {
	pts, out, done, err := prepare(iv, nsteps)
	if done || err != nil {
		return out, err
	}
	if len(pts) <= 2 {
		return spatial(pts, nsteps), nil
	}

	k := len(pts)
	start, end := pts[0].T, pts[k-1].T
	span := end - start
	if span == 0 {
		return spatial(pts, nsteps), nil
	}

	xs := make([]float64, k)
	ys := make([]float64, k)
	ts := make([]float64, k)
	for i, p := range pts {
		xs[i], ys[i], ts[i] = p.X, p.Y, p.T
	}
	mx := hermiteTangents(ts, xs, monotonic)
	my := hermiteTangents(ts, ys, monotonic)

	out = trajectory.WithCapacity(nsteps)
	out.AddPoint(pts[0].X, pts[0].Y, pts[0].T)
	lower := 0
	for i := 1; i < nsteps-1; i++ {
		current := lerpTime(start, end, float64(i)/float64(nsteps-1))
		for lower+2 < k && ts[lower+1] < current {
			lower++
		}
		upper := lower + 1
		h := ts[upper] - ts[lower]
		s := 0.0
		if h > 0 {
			s = (current - ts[lower]) / h
		}

		x := xs[lower]*h00(s) + h*mx[lower]*h10(s) + xs[upper]*h01(s) + h*mx[upper]*h11(s)
		y := ys[lower]*h00(s) + h*my[lower]*h10(s) + ys[upper]*h01(s) + h*my[upper]*h11(s)
		out.AddPoint(x, y, current)
	}
	out.AddPoint(pts[k-1].X, pts[k-1].Y, pts[k-1].T)
	return out, nil
}

// hermiteTangents returns the tangent dy/dt at every waypoint. Secants over a
// zero-length time step count as flat.
func hermiteTangents(t, y []float64, monotonic bool) []float64 {
	k := len(y)
	delta := make([]float64, k-1)
	for i := 0; i < k-1; i++ {
		if h := t[i+1] - t[i]; h != 0 {
			delta[i] = (y[i+1] - y[i]) / h
		}
	}

	m := make([]float64, k)
	m[0] = delta[0]
	m[k-1] = delta[k-2]
	for i := 1; i < k-1; i++ {
		m[i] = 0.5 * (delta[i-1] + delta[i])
	}
	if !monotonic {
		return m
	}

	for i := 0; i < k-1; i++ {
		extremum := i > 0 &&
			((y[i] >= y[i-1] && y[i] >= y[i+1]) || (y[i] <= y[i-1] && y[i] <= y[i+1]))
		if y[i] == y[i+1] || extremum {
			m[i] = 0
			continue
		}
		if delta[i] == 0 {
			continue
		}
		alpha := m[i] / delta[i]
		beta := m[i+1] / delta[i]
		if sum2 := alpha*alpha + beta*beta; sum2 > 9 {
			tau := 3 / math.Sqrt(sum2)
			m[i] = tau * alpha * delta[i]
			m[i+1] = tau * beta * delta[i]
		}
	}
	return m
}
