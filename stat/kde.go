package stat

import (
	"math"

	gstat "gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Density is a kernel density estimate evaluated on a grid.
type Density struct {
	Bandwidth float64
	Y         []float64 // grid positions
	Density   []float64 // estimated density at Y
}

// Max returns the largest density value.
func (d Density) Max() float64 {
	m := 0.0
	for _, v := range d.Density {
		if v > m {
			m = v
		}
	}
	return m
}

// ScottBandwidth returns Scott's rule of thumb σ·n^(-1/5).
func ScottBandwidth(xs []float64) float64 {
	vals := finite(xs)
	if len(vals) < 2 {
		return 0
	}
	sd := gstat.StdDev(vals, nil)
	return sd * math.Pow(float64(len(vals)), -0.2)
}

// KDE estimates the density of xs with a Gaussian kernel. The grid of
// gridSize points reaches cut bandwidths beyond the extreme values.
// A bandwidth <= 0 selects ScottBandwidth. Degenerate samples (fewer than
// two distinct values) yield a zero bandwidth and a single grid point.
func KDE(xs []float64, bandwidth, cut float64, gridSize int) Density {
	vals := finite(xs)
	if len(vals) == 0 {
		return Density{}
	}
	if bandwidth <= 0 {
		bandwidth = ScottBandwidth(vals)
	}
	if bandwidth == 0 || math.IsNaN(bandwidth) {
		return Density{Y: []float64{vals[0]}, Density: []float64{1}}
	}
	if gridSize < 2 {
		gridSize = 100
	}

	lo, hi := vals[0], vals[0]
	for _, x := range vals {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	lo -= cut * bandwidth
	hi += cut * bandwidth

	d := Density{
		Bandwidth: bandwidth,
		Y:         make([]float64, gridSize),
		Density:   make([]float64, gridSize),
	}
	kernels := make([]distuv.Normal, len(vals))
	for i, x := range vals {
		kernels[i] = distuv.Normal{Mu: x, Sigma: bandwidth}
	}
	step := (hi - lo) / float64(gridSize-1)
	n := float64(len(vals))
	for i := range d.Y {
		y := lo + float64(i)*step
		sum := 0.0
		for _, k := range kernels {
			sum += k.Prob(y)
		}
		d.Y[i] = y
		d.Density[i] = sum / n
	}
	return d
}
