// Package interp turns a sparse key-centre path into a densely sampled
// trajectory.
//
// Every interpolator takes the waypoint trajectory and the number of output
// samples. Outputs start and end exactly on the first and last waypoint and
// hold exactly nsteps samples when nsteps > 1. Paths of one or two waypoints,
// and paths with no spatial extent, are handled the same way by every
// interpolator.
package interp

import (
	"fmt"
	"math"
	"sort"

	"swypesim/internal/model"
	"swypesim/internal/trajectory"
)

// Func is the common signature of every interpolator.
type Func func(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error)

type Method string

const (
	MethodLinear       Method = "linear"
	MethodHermite      Method = "hermite"
	MethodMonotonic    Method = "monotonic"
	MethodCubic        Method = "cubic"
	MethodModCubic     Method = "modcubic"
	MethodBezier       Method = "bezier"
	MethodBezierSloppy Method = "bezier-sloppy"
)

var methods = map[Method]Func{
	MethodLinear:       Spatial,
	MethodHermite:      HermiteCubicSpline,
	MethodMonotonic:    MonotonicCubicSpline,
	MethodCubic:        CubicSpline,
	MethodModCubic:     ModCubicSpline,
	MethodBezier:       Bezier,
	MethodBezierSloppy: BezierSloppy,
}

// ByName resolves an interpolator by its method name.
func ByName(name string) (Func, error) {
	fn, ok := methods[Method(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interpolation method %q", model.ErrInvalidInput, name)
	}
	return fn, nil
}

// Methods lists the registered method names in sorted order.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// prepare validates the request and resolves the cases shared by every
// interpolator. When done is true, out is the final answer.
func prepare(iv *trajectory.Trajectory, nsteps int) (pts []trajectory.Point, out *trajectory.Trajectory, done bool, err error) {
	if iv == nil || iv.Length() == 0 {
		return nil, nil, true, fmt.Errorf("%w: interpolation needs at least one waypoint", model.ErrInvalidInput)
	}
	if nsteps <= 0 {
		return nil, nil, true, fmt.Errorf("%w: interpolation needs a positive step count, got %d", model.ErrInvalidInput, nsteps)
	}
	pts = iv.Points()
	if nsteps == 1 {
		out = trajectory.WithCapacity(1)
		out.AddPoint(pts[0].X, pts[0].Y, pts[0].T)
		return pts, out, true, nil
	}
	if len(pts) == 1 {
		out = trajectory.WithCapacity(nsteps)
		for i := 0; i < nsteps; i++ {
			out.AddPoint(pts[0].X, pts[0].Y, pts[0].T)
		}
		return pts, out, true, nil
	}
	if iv.SpatialLength() == 0 {
		return pts, stationary(pts, nsteps), true, nil
	}
	return pts, nil, false, nil
}

// stationary handles a path that never moves: every sample sits on the start
// position while time advances evenly to the final waypoint.
func stationary(pts []trajectory.Point, nsteps int) *trajectory.Trajectory {
	first, last := pts[0], pts[len(pts)-1]
	out := trajectory.WithCapacity(nsteps)
	out.AddPoint(first.X, first.Y, first.T)
	for i := 1; i < nsteps-1; i++ {
		out.AddPoint(first.X, first.Y, lerpTime(first.T, last.T, float64(i)/float64(nsteps-1)))
	}
	out.AddPoint(last.X, last.Y, last.T)
	return out
}

// lerpTime interpolates between two non-decreasing times and never leaves
// [a, b], so samples built from it stay in insertion order.
func lerpTime(a, b, w float64) float64 {
	return math.Min(b, math.Max(a, a+(b-a)*w))
}

func distance(a, b trajectory.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func pathLength(pts []trajectory.Point) float64 {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += distance(pts[i-1], pts[i])
	}
	return l
}

func fromPoints(pts []trajectory.Point) *trajectory.Trajectory {
	out := trajectory.WithCapacity(len(pts))
	for _, p := range pts {
		out.AddPoint(p.X, p.Y, p.T)
	}
	return out
}
