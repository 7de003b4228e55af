package interp

import (
	"math"
	"sort"

	"swypesim/internal/trajectory"
)

// CubicSpline interpolates with a natural cubic spline per axis, solving the
// tridiagonal derivative system with the Thomas algorithm. Each waypoint
// segment receives samples in proportion to its share of the path length.
func CubicSpline(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	return cubicBase(iv, nsteps, false)
}

// ModCubicSpline draws the first and last segments as straight lines and
// splines the segments between them, which keeps the path from curling at the
// first and last letter of a word. Three-waypoint paths use CubicSpline.
func ModCubicSpline(iv *trajectory.Trajectory, nsteps int) (*trajectory.Trajectory, error) {
	if iv != nil && iv.Length() == 3 {
		return cubicBase(iv, nsteps, false)
	}
	return cubicBase(iv, nsteps, true)
}

func cubicBase(iv *trajectory.Trajectory, nsteps int, mod bool) (*trajectory.Trajectory, error) {
	pts, out, done, err := prepare(iv, nsteps)
	if done || err != nil {
		return out, err
	}
	if len(pts) <= 2 {
		return spatial(pts, nsteps), nil
	}

	n := len(pts)
	splines := n - 1
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	dx := splineDerivatives(xs, mod)
	dy := splineDerivatives(ys, mod)

	lengths := make([]float64, splines)
	for i := range lengths {
		lengths[i] = distance(pts[i], pts[i+1])
	}
	counts := allocateSteps(lengths, nsteps-1)
	if counts[splines-1] == 0 {
		// The final segment carries the closing waypoint.
		busiest := 0
		for i, c := range counts {
			if c > counts[busiest] {
				busiest = i
			}
		}
		counts[busiest]--
		counts[splines-1] = 1
	}

	out = trajectory.WithCapacity(nsteps)
	out.AddPoint(pts[0].X, pts[0].Y, pts[0].T)
	for i := 0; i < splines; i++ {
		c := counts[i]
		for j := 1; j <= c; j++ {
			if i == splines-1 && j == c {
				break
			}
			s := float64(j) / float64(c)
			a, b := pts[i], pts[i+1]
			t := lerpTime(a.T, b.T, s)
			if mod && (i == 0 || i == splines-1) {
				out.AddPoint(a.X+(b.X-a.X)*s, a.Y+(b.Y-a.Y)*s, t)
				continue
			}
			out.AddPoint(
				cubicSegment(xs[i], xs[i+1], dx[i], dx[i+1], s),
				cubicSegment(ys[i], ys[i+1], dy[i], dy[i+1], s),
				t,
			)
		}
	}
	last := pts[n-1]
	out.AddPoint(last.X, last.Y, last.T)
	return out, nil
}

// cubicSegment evaluates the unit-parameter Hermite cubic from v0 to v1 with
// end derivatives d0 and d1.
func cubicSegment(v0, v1, d0, d1, s float64) float64 {
	return v0 + d0*s + (3*(v1-v0)-2*d0-d1)*s*s + (2*(v0-v1)+d0+d1)*s*s*s
}

// splineDerivatives solves for the derivative of the spline at every waypoint.
// The forward sweep produces the working coefficients c' and d'; the backward
// substitution yields the derivatives. With mod set, the first and last
// segments are lines whose derivatives are already known, so only the
// interior derivatives are solved for.
func splineDerivatives(v []float64, mod bool) []float64 {
	n := len(v)
	cp := make([]float64, n)
	dp := make([]float64, n)

	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			cp[i] = 0.5
			dp[i] = 0.5 * 3 * (v[1] - v[0])
		case i < n-1 && mod && i == 1:
			cp[i] = 0
			dp[i] = v[i] - v[i-1]
		case i < n-1 && mod && i == n-2:
			dp[i] = v[i+1] - v[i]
		case i < n-1:
			pivot := 4 - cp[i-1]
			if pivot == 0 {
				dp[i] = 0.5 * (v[i+1] - v[i-1])
				continue
			}
			cp[i] = 1 / pivot
			dp[i] = (3*(v[i+1]-v[i-1]) - dp[i-1]) / pivot
		default:
			pivot := 2 - cp[i-1]
			if pivot == 0 {
				dp[i] = v[i] - v[i-1]
				continue
			}
			dp[i] = (3*(v[i]-v[i-1]) - dp[i-1]) / pivot
		}
	}

	d := make([]float64, n)
	i, stop := n-1, 0
	if mod {
		i, stop = n-2, 1
	}
	d[i] = dp[i]
	for ; i > stop; i-- {
		d[i-1] = dp[i-1] - cp[i-1]*d[i]
	}
	return d
}

// allocateSteps splits total intervals across segments in proportion to their
// lengths. Truncated shares are topped up largest-remainder first, so the
// counts always sum to total.
func allocateSteps(lengths []float64, total int) []int {
	sum := 0.0
	for _, l := range lengths {
		sum += l
	}
	counts := make([]int, len(lengths))
	if sum == 0 || total <= 0 {
		if len(counts) > 0 && total > 0 {
			counts[len(counts)-1] = total
		}
		return counts
	}

	type remainder struct {
		idx  int
		frac float64
	}
	rem := make([]remainder, len(lengths))
	assigned := 0
	for i, l := range lengths {
		share := float64(total) * l / sum
		whole := math.Floor(share)
		counts[i] = int(whole)
		assigned += counts[i]
		rem[i] = remainder{idx: i, frac: share - whole}
	}
	sort.SliceStable(rem, func(a, b int) bool { return rem[a].frac > rem[b].frac })
	for j := 0; assigned < total; j = (j + 1) % len(rem) {
		counts[rem[j].idx]++
		assigned++
	}
	return counts
}
