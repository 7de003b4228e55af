package interp

import (
	"swypesim/internal/trajectory"
)

// Bezier rounds each interior waypoint with a quadratic Bezier whose end
// points sit a quarter of the way towards the neighbouring waypoints, joined
// by straight segments.
func Bezier(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	pts, out, done, err := prepare(iv, nsteps)
	if done || err != nil {
		return out, err
	}
	if len(pts) <= 2 {
		return spatial(pts, nsteps), nil
	}

	n := len(pts)
	ctrl := make([]trajectory.Point, 0, 3*n-4)
	ctrl = append(ctrl, pts[0])
	for i := 1; i < n-1; i++ {
		ctrl = append(ctrl,
			towards(pts[i], pts[i-1], 0.25),
			pts[i],
			towards(pts[i], pts[i+1], 0.25),
		)
	}
	ctrl = append(ctrl, pts[n-1])
	ctrlLength := pathLength(ctrl)

	segments := [][]trajectory.Point{{ctrl[0], ctrl[1]}}
	for i := 2; i < len(ctrl); i += 3 {
		steps := bezierSteps(nsteps, distance(ctrl[i-1], ctrl[i]), ctrlLength)
		segments = append(segments,
			quadraticBezier(ctrl[i-1], ctrl[i], ctrl[i+1], steps),
			[]trajectory.Point{ctrl[i+1], ctrl[i+2]},
		)
	}
	return conform(stitch(segments), nsteps), nil
}

// BezierSloppy is Bezier with the curve end points halfway between
// waypoints, so consecutive curves meet directly and corners are cut wider.
func BezierSloppy(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	pts, out, done, err := prepare(iv, nsteps)
	if done || err != nil {
		return out, err
	}
	if len(pts) <= 2 {
		return spatial(pts, nsteps), nil
	}

	n := len(pts)
	ctrl := make([]trajectory.Point, 0, 2*n-1)
	ctrl = append(ctrl, pts[0])
	for i := 1; i < n; i++ {
		ctrl = append(ctrl, towards(pts[i-1], pts[i], 0.5), pts[i])
	}
	ctrlLength := pathLength(ctrl)

	segments := [][]trajectory.Point{{ctrl[0], ctrl[1]}}
	for i := 2; i < len(ctrl)-1; i += 2 {
		steps := bezierSteps(nsteps, distance(ctrl[i-1], ctrl[i]), ctrlLength)
		segments = append(segments, quadraticBezier(ctrl[i-1], ctrl[i], ctrl[i+1], steps))
	}
	m := len(ctrl)
	segments = append(segments, []trajectory.Point{ctrl[m-2], ctrl[m-1]})
	return conform(stitch(segments), nsteps), nil
}

// towards moves fraction f of the way from a to b in x, y and t.
func towards(a, b trajectory.Point, f float64) trajectory.Point {
	return trajectory.Point{
		X: a.X + (b.X-a.X)*f,
		Y: a.Y + (b.Y-a.Y)*f,
		T: a.T + (b.T-a.T)*f,
	}
}

// bezierSteps sizes a curve by 1.5 times its entry chord relative to the
// whole control polygon. Every curve gets at least one step.
func bezierSteps(nsteps int, chord, total float64) int {
	if total == 0 {
		return 1
	}
	steps := int(float64(nsteps) * 1.5 * chord / total)
	if steps < 1 {
		return 1
	}
	return steps
}

// quadraticBezier samples the curve from p0 to p2 with control p1 at steps+1
// evenly spaced parameter values. Time runs linearly from p0 to p2.
func quadraticBezier(p0, p1, p2 trajectory.Point, steps int) []trajectory.Point {
	out := make([]trajectory.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		s := float64(i) / float64(steps)
		ax := p0.X + (p1.X-p0.X)*s
		ay := p0.Y + (p1.Y-p0.Y)*s
		bx := p1.X + (p2.X-p1.X)*s
		by := p1.Y + (p2.Y-p1.Y)*s
		out = append(out, trajectory.Point{
			X: ax + (bx-ax)*s,
			Y: ay + (by-ay)*s,
			T: lerpTime(p0.T, p2.T, s),
		})
	}
	return out
}

// stitch concatenates ordered segments, dropping the first point of every
// segment after the first since it repeats the previous segment's end.
func stitch(segments [][]trajectory.Point) []trajectory.Point {
	var out []trajectory.Point
	for i, seg := range segments {
		if i > 0 && len(seg) > 0 {
			seg = seg[1:]
		}
		out = append(out, seg...)
	}
	return out
}

// conform resamples a stitched path to exactly nsteps samples, keeping it as
// is when it already has that many.
func conform(pts []trajectory.Point, nsteps int) *trajectory.Trajectory {
	if len(pts) == nsteps {
		return fromPoints(pts)
	}
	return spatial(pts, nsteps)
}
