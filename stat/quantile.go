// Package stat provides the statistics behind qplot's stats: quantiles
// and outlier bounds, summaries, kernel density estimates, box plot
// statistics and the Mann-Whitney U test used for significance brackets.
package stat

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of xs by linear interpolation between
// the closest order statistics (method 7 of Hyndman and Fan, the default
// of R). NaN values are ignored; an empty input yields NaN.
// xs is not modified.
func Quantile(p float64, xs []float64) float64 {
	sorted := sortedFinite(xs)
	return quantileSorted(p, sorted)
}

func quantileSorted(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func sortedFinite(xs []float64) []float64 {
	sorted := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			sorted = append(sorted, x)
		}
	}
	sort.Float64s(sorted)
	return sorted
}

// BoundMode selects how the lower outlier bound is derived.
type BoundMode int

const (
	// Symmetric bounds are [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
	Symmetric BoundMode = iota

	// ZeroFloor bounds are [0, Q3 + 1.5*IQR] for non-negative measurements.
	ZeroFloor
)

func (m BoundMode) String() string {
	if m == ZeroFloor {
		return "zero-floor"
	}
	return "symmetric"
}

// Bounds is an inclusive interval.
type Bounds struct {
	Q1, Q3    float64
	Low, High float64
}

// Contains reports whether Low <= x <= High.
func (b Bounds) Contains(x float64) bool {
	return x >= b.Low && x <= b.High
}

// IQR returns the inter-quartile range Q3 - Q1.
func (b Bounds) IQR() float64 { return b.Q3 - b.Q1 }

// IQRBounds computes the outlier bounds of xs.
func IQRBounds(xs []float64, mode BoundMode) Bounds {
	sorted := sortedFinite(xs)
	q1 := quantileSorted(0.25, sorted)
	q3 := quantileSorted(0.75, sorted)
	iqr := q3 - q1
	b := Bounds{
		Q1:   q1,
		Q3:   q3,
		Low:  q1 - 1.5*iqr,
		High: q3 + 1.5*iqr,
	}
	if mode == ZeroFloor {
		b.Low = 0
	}
	return b
}
