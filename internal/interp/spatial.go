package interp

import (
	"math"

	"swypesim/internal/trajectory"
)

// Spatial resamples a path at equal arc-length increments, interpolating x, y
// and t linearly inside the bracketing waypoint segment.
func Spatial(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	pts, out, done, err := prepare(iv, nsteps)
	if done || err != nil {
		return out, err
	}
	return spatial(pts, nsteps), nil
}

// spatial expects at least two points and nsteps >= 2.
func spatial(pts []trajectory.Point, nsteps int) *trajectory.Trajectory {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + distance(pts[i-1], pts[i])
	}
	total := cum[len(cum)-1]
	if total == 0 {
		return stationary(pts, nsteps)
	}
	step := total / float64(nsteps-1)

	out := trajectory.WithCapacity(nsteps)
	out.AddPoint(pts[0].X, pts[0].Y, pts[0].T)

	// The bracket is the first segment reaching the target distance, or the
	// final segment once the walk runs out of waypoints.
	low := 0
	for i := 1; i < nsteps-1; i++ {
		target := step * float64(i)
		for cum[low+1] < target && low+2 < len(pts) {
			low++
		}
		high := low + 1

		w := 0.5
		if cum[high] != cum[low] {
			w = math.Min(1, math.Max(0, (target-cum[low])/(cum[high]-cum[low])))
		}
		a, b := pts[low], pts[high]
		out.AddPoint(
			b.X*w+a.X*(1-w),
			b.Y*w+a.Y*(1-w),
			lerpTime(a.T, b.T, w),
		)
	}

	last := pts[len(pts)-1]
	out.AddPoint(last.X, last.Y, last.T)
	return out
}
