package stat

import (
	"math"
)

// BoxPlotData holds the components of a box and whisker plot.
type BoxPlotData struct {
	N           int
	Min, Max    float64
	Low, High   float64 // whisker ends: extreme values within the fences
	Q1, Med, Q3 float64
	Outliers    []float64
}

// BoxPlot calculates components of a box and whisker plot. Values beyond
// coef times the inter-quartile range from the box are outliers; coef <= 0
// means 1.5.
func BoxPlot(data []float64, coef float64) BoxPlotData {
	if coef <= 0 {
		coef = 1.5
	}
	d := sortedFinite(data)
	n := len(d)
	b := BoxPlotData{N: n}
	if n == 0 {
		nan := math.NaN()
		b.Min, b.Max, b.Low, b.High, b.Q1, b.Med, b.Q3 = nan, nan, nan, nan, nan, nan, nan
		return b
	}

	b.Min, b.Max = d[0], d[n-1]
	b.Q1 = quantileSorted(0.25, d)
	b.Med = quantileSorted(0.5, d)
	b.Q3 = quantileSorted(0.75, d)

	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-coef*iqr, b.Q3+coef*iqr
	b.Low, b.High = b.Max, b.Min

	// Compute low, high and outliers.
	for _, y := range d {
		if y >= lo && y < b.Low {
			b.Low = y
		}
		if y <= hi && y > b.High {
			b.High = y
		}
		if y < lo || y > hi {
			b.Outliers = append(b.Outliers, y)
		}
	}

	return b
}
