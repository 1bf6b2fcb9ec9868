package geom

import (
	"math"
	"math/rand"
	"sort"
)

// Jitter returns n uniform offsets in [-amount, amount].
func Jitter(rng *rand.Rand, n int, amount float64) []float64 {
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = (2*rng.Float64() - 1) * amount
	}
	return offsets
}

// Swarm lays out points with the given y positions as a beeswarm: each
// point gets an x offset such that no two points are closer than
// diameter. Points are placed in order of increasing y, each at the
// offset closest to the center that does not collide with points placed
// before. Coordinates must use the same unit in x and y.
func Swarm(ys []float64, diameter float64) []float64 {
	offsets := make([]float64, len(ys))
	if diameter <= 0 {
		return offsets
	}

	order := make([]int, len(ys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ys[order[a]] < ys[order[b]] })

	type placed struct{ x, y float64 }
	var done []placed
	d2 := diameter * diameter

	collides := func(x, y float64) bool {
		for _, p := range done {
			dx, dy := x-p.x, y-p.y
			if dx*dx+dy*dy < d2-1e-9 {
				return true
			}
		}
		return false
	}

	for _, i := range order {
		y := ys[i]
		candidates := []float64{0}
		for _, p := range done {
			dy := y - p.y
			if math.Abs(dy) >= diameter {
				continue
			}
			dx := math.Sqrt(d2 - dy*dy)
			candidates = append(candidates, p.x-dx, p.x+dx)
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return math.Abs(candidates[a]) < math.Abs(candidates[b])
		})
		x := candidates[len(candidates)-1]
		for _, c := range candidates {
			if !collides(c, y) {
				x = c
				break
			}
		}
		offsets[i] = x
		done = append(done, placed{x, y})
	}
	return offsets
}

// Squeeze scales offsets down so that none exceeds half of width. It
// returns true if offsets had to be scaled.
func Squeeze(offsets []float64, width float64) bool {
	max := 0.0
	for _, x := range offsets {
		max = math.Max(max, math.Abs(x))
	}
	if max <= width/2 || max == 0 {
		return false
	}
	f := width / 2 / max
	for i := range offsets {
		offsets[i] *= f
	}
	return true
}
