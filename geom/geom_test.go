package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDodge(t *testing.T) {
	tests := []struct {
		n, i          int
		width         float64
		offset, width2 float64
	}{
		{1, 0, 0.8, 0, 0.8},
		{2, 0, 0.8, -0.2, 0.4},
		{2, 1, 0.8, 0.2, 0.4},
		{4, 0, 0.8, -0.3, 0.2},
		{4, 3, 0.8, 0.3, 0.2},
	}
	for _, tc := range tests {
		off, w := Dodge(tc.n, tc.i, tc.width)
		assert.InDelta(t, tc.offset, off, 1e-12, "Dodge(%d, %d)", tc.n, tc.i)
		assert.InDelta(t, tc.width2, w, 1e-12, "Dodge(%d, %d)", tc.n, tc.i)
	}
}

func TestBarBox(t *testing.T) {
	assert.Equal(t, Box{XMin: 1.5, XMax: 2.5, YMin: 0, YMax: 3}, BarBox(2, 3, 1))
	assert.Equal(t, Box{XMin: 1.5, XMax: 2.5, YMin: -3, YMax: 0}, BarBox(2, -3, 1))
}

func TestSwarmNoOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ys := make([]float64, 60)
	for i := range ys {
		ys[i] = rng.NormFloat64()
	}
	const d = 0.3
	xs := Swarm(ys, d)
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			dist := math.Hypot(xs[i]-xs[j], ys[i]-ys[j])
			if dist < d-1e-6 {
				t.Fatalf("points %d and %d overlap: distance %g", i, j, dist)
			}
		}
	}
}

func TestSwarmSpreadValues(t *testing.T) {
	// Points far apart in y stay on the center line.
	xs := Swarm([]float64{0, 10, 20}, 1)
	assert.Equal(t, []float64{0, 0, 0}, xs)

	// Two equal values go side by side.
	xs = Swarm([]float64{5, 5}, 1)
	assert.InDelta(t, 1, math.Abs(xs[0]-xs[1]), 1e-12)
}

func TestJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	offsets := Jitter(rng, 100, 0.1)
	assert.Len(t, offsets, 100)
	for _, x := range offsets {
		assert.LessOrEqual(t, math.Abs(x), 0.1)
	}
}

func TestSqueeze(t *testing.T) {
	xs := []float64{-2, 0, 1}
	assert.True(t, Squeeze(xs, 2))
	assert.InDelta(t, -1, xs[0], 1e-12)
	assert.InDelta(t, 0.5, xs[2], 1e-12)

	ys := []float64{-0.2, 0.3}
	assert.False(t, Squeeze(ys, 1))
	assert.Equal(t, []float64{-0.2, 0.3}, ys)
}
