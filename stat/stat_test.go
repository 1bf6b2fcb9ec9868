package stat

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		p    float64
		xs   []float64
		want float64
	}{
		// Reference values from R quantile(x, p, type = 7).
		{0.25, []float64{1, 2, 3, 4}, 1.75},
		{0.75, []float64{1, 2, 3, 4}, 3.25},
		{0.5, []float64{4, 1, 3, 2}, 2.5},
		{0.25, []float64{7, 15, 36, 39, 40, 41}, 20.25},
		{0.75, []float64{7, 15, 36, 39, 40, 41}, 39.75},
		{0, []float64{3, 1, 2}, 1},
		{1, []float64{3, 1, 2}, 3},
		{0.3, []float64{5}, 5},
		{0.5, []float64{1, math.NaN(), 3}, 2},
	}

	for i, tc := range tests {
		got := Quantile(tc.p, tc.xs)
		assert.InDelta(t, tc.want, got, 1e-12, "%d: Quantile(%g, %v)", i, tc.p, tc.xs)
	}

	assert.True(t, math.IsNaN(Quantile(0.5, nil)))
	assert.True(t, math.IsNaN(Quantile(1.5, []float64{1, 2})))
}

func TestQuantileDoesNotModifyInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Quantile(0.5, xs)
	if diff := cmp.Diff([]float64{3, 1, 2}, xs); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestIQRBounds(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	b := IQRBounds(xs, Symmetric)
	assert.InDelta(t, 1.75, b.Q1, 1e-12)
	assert.InDelta(t, 3.25, b.Q3, 1e-12)
	assert.InDelta(t, 1.5, b.IQR(), 1e-12)
	assert.InDelta(t, -0.5, b.Low, 1e-12)
	assert.InDelta(t, 5.5, b.High, 1e-12)

	z := IQRBounds(xs, ZeroFloor)
	assert.Equal(t, 0.0, z.Low)
	assert.Equal(t, b.High, z.High)

	// Inclusive on both ends.
	assert.True(t, b.Contains(b.Low))
	assert.True(t, b.Contains(b.High))
	assert.True(t, b.Contains(b.Q1))
	assert.True(t, b.Contains(b.Q3))
	assert.False(t, b.Contains(math.Nextafter(b.High, math.Inf(1))))
	assert.False(t, z.Contains(-0.1))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5, s.Mean, 1e-12)
	assert.InDelta(t, 2.138089935, s.StdDev, 1e-8) // sample SD
	assert.InDelta(t, 2.138089935/math.Sqrt(8), s.StdErr, 1e-8)

	lo, hi := s.Interval(SD)
	assert.InDelta(t, 5-s.StdDev, lo, 1e-12)
	assert.InDelta(t, 5+s.StdDev, hi, 1e-12)
	lo, hi = s.Interval(NoError)
	assert.Equal(t, lo, hi)

	one := Summarize([]float64{3})
	assert.Equal(t, 3.0, one.Mean)
	assert.Equal(t, 0.0, one.StdDev)

	none := Summarize(nil)
	assert.True(t, math.IsNaN(none.Mean))
}

func TestKDE(t *testing.T) {
	xs := []float64{1, 2, 2.5, 3, 4, 4.2, 5}
	d := KDE(xs, 0, 1, 200)
	require.Len(t, d.Y, 200)
	require.Len(t, d.Density, 200)

	bw := ScottBandwidth(xs)
	assert.InDelta(t, bw, d.Bandwidth, 1e-12)
	assert.InDelta(t, 1-bw, d.Y[0], 1e-9)
	assert.InDelta(t, 5+bw, d.Y[199], 1e-9)

	// Integral over the support is a bit below 1 (tails are cut).
	area := 0.0
	for i := 1; i < len(d.Y); i++ {
		area += (d.Y[i] - d.Y[i-1]) * (d.Density[i] + d.Density[i-1]) / 2
	}
	assert.Greater(t, area, 0.8)
	assert.Less(t, area, 1.0)

	degenerate := KDE([]float64{3, 3, 3}, 0, 1, 100)
	assert.Equal(t, []float64{3}, degenerate.Y)
	assert.Equal(t, 0.0, degenerate.Bandwidth)
}

func TestMannWhitneyExact(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{6, 7, 8, 9, 10}
	res, err := MannWhitney(x, y)
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, 0.0, res.Statistic)
	assert.InDelta(t, 2.0/252, res.PValue, 1e-12)

	// Symmetric in its arguments.
	rev, err := MannWhitney(y, x)
	require.NoError(t, err)
	assert.Equal(t, 25.0, rev.Statistic)
	assert.InDelta(t, res.PValue, rev.PValue, 1e-12)
}

func TestMannWhitneyAsymptotic(t *testing.T) {
	// Ties force the normal approximation.
	x := []float64{1, 2, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{2, 3, 9, 10, 11, 12, 13, 14, 15}
	res, err := MannWhitney(x, y)
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Greater(t, res.PValue, 0.0)
	assert.Less(t, res.PValue, 0.05)

	same, err := MannWhitney(x, x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same.PValue, 1e-12)

	allTied, err := MannWhitney([]float64{1, 1, 1, 1, 1, 1, 1, 1}, []float64{1, 1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, allTied.PValue)
}

func TestMannWhitneyEmpty(t *testing.T) {
	_, err := MannWhitney(nil, []float64{1})
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestUCounts(t *testing.T) {
	// Number of arrangements sums to C(m+n, m).
	counts := uCounts(3, 4)
	total := 0.0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 35.0, total)
	assert.Len(t, counts, 13)
	if diff := cmp.Diff([]float64{1, 1, 2, 3, 4, 4, 5, 4, 4, 3, 2, 1, 1}, counts); diff != "" {
		t.Errorf("uCounts(3,4) (-want +got):\n%s", diff)
	}
}

func TestRank(t *testing.T) {
	ranks, tie := rank([]float64{10, 20, 20, 30})
	if diff := cmp.Diff([]float64{1, 2.5, 2.5, 4}, ranks); diff != "" {
		t.Errorf("ranks (-want +got):\n%s", diff)
	}
	assert.Equal(t, 6.0, tie)
}

func TestStars(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.00001, "****"},
		{1e-4, "****"},
		{0.0005, "***"},
		{0.005, "**"},
		{0.05, "*"},
		{0.051, "ns"},
		{1, "ns"},
		{math.NaN(), "ns"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Stars(tc.p), "p=%g", tc.p)
	}
}

func TestPairs(t *testing.T) {
	pairs := Pairs([]string{"1", "0"}, []string{"WT", "KO", "HET"})
	want := []Pair{
		{{"1", "WT"}, {"1", "KO"}},
		{{"1", "WT"}, {"1", "HET"}},
		{{"1", "KO"}, {"1", "HET"}},
		{{"0", "WT"}, {"0", "KO"}},
		{{"0", "WT"}, {"0", "HET"}},
		{{"0", "KO"}, {"0", "HET"}},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("Pairs (-want +got):\n%s", diff)
	}

	assert.Empty(t, Pairs([]string{"a"}, []string{"only"}))
}

func TestBoxPlot(t *testing.T) {
	b := BoxPlot([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100}, 0)
	assert.Equal(t, 9, b.N)
	assert.Equal(t, 3.0, b.Q1)
	assert.Equal(t, 5.0, b.Med)
	assert.Equal(t, 7.0, b.Q3)
	assert.Equal(t, 1.0, b.Low)
	assert.Equal(t, 8.0, b.High)
	assert.Equal(t, []float64{100}, b.Outliers)
	assert.Equal(t, 100.0, b.Max)
}
