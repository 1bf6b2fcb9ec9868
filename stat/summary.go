package stat

import (
	"math"

	gstat "gonum.org/v1/gonum/stat"
)

// ErrorKind selects the error reported around a mean.
type ErrorKind int

const (
	NoError ErrorKind = iota
	SD                // sample standard deviation
	SE                // standard error of the mean, roughly a 68% interval
)

func (k ErrorKind) String() string {
	switch k {
	case SD:
		return "sd"
	case SE:
		return "se"
	}
	return "none"
}

// Summary of a sample.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	StdErr float64
}

// Summarize computes mean, sample standard deviation and standard error
// of the non-NaN values in xs. StdDev and StdErr are 0 for a single value.
func Summarize(xs []float64) Summary {
	vals := finite(xs)
	s := Summary{N: len(vals)}
	switch s.N {
	case 0:
		s.Mean, s.StdDev, s.StdErr = math.NaN(), math.NaN(), math.NaN()
	case 1:
		s.Mean = vals[0]
	default:
		s.Mean, s.StdDev = gstat.MeanStdDev(vals, nil)
		s.StdErr = gstat.StdErr(s.StdDev, float64(s.N))
	}
	return s
}

// Interval returns the interval mean ± error of the given kind.
func (s Summary) Interval(kind ErrorKind) (lo, hi float64) {
	var e float64
	switch kind {
	case SD:
		e = s.StdDev
	case SE:
		e = s.StdErr
	}
	return s.Mean - e, s.Mean + e
}

func finite(xs []float64) []float64 {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			vals = append(vals, x)
		}
	}
	return vals
}
