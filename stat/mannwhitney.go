package stat

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewSamples is returned by tests that need values in both samples.
var ErrTooFewSamples = errors.New("too few samples")

// exactLimit is the sample size below which the exact distribution of U
// is used when there are no ties.
const exactLimit = 8

// TestResult is the outcome of a two-sample test.
type TestResult struct {
	Name      string
	Statistic float64 // U of the first sample
	PValue    float64
	Exact     bool
}

// MannWhitney performs the two-sided Mann-Whitney U rank test of x
// against y. Small samples without ties use the exact distribution of U,
// everything else the normal approximation with tie and continuity
// correction. NaN values are ignored.
func MannWhitney(x, y []float64) (TestResult, error) {
	x, y = finite(x), finite(y)
	n1, n2 := len(x), len(y)
	res := TestResult{Name: "Mann-Whitney"}
	if n1 == 0 || n2 == 0 {
		return res, ErrTooFewSamples
	}

	ranks, tieTerm := rank(append(append([]float64{}, x...), y...))
	r1 := 0.0
	for _, r := range ranks[:n1] {
		r1 += r
	}
	u1 := r1 - float64(n1*(n1+1))/2
	u2 := float64(n1*n2) - u1
	u := math.Max(u1, u2)
	res.Statistic = u1

	if n1 < exactLimit && n2 < exactLimit && tieTerm == 0 {
		res.Exact = true
		res.PValue = math.Min(1, 2*exactUpperTail(n1, n2, u))
		return res, nil
	}

	n := float64(n1 + n2)
	mu := float64(n1*n2) / 2
	sigma := math.Sqrt(float64(n1*n2) / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if sigma == 0 {
		res.PValue = 1
		return res, nil
	}
	z := (u - mu - 0.5) / sigma
	res.PValue = math.Min(1, math.Max(0, 2*distuv.UnitNormal.Survival(z)))
	return res, nil
}

// rank returns the mid-ranks of xs (1-based) and the tie term
// sum(t^3 - t) over all groups of t tied values.
func rank(xs []float64) (ranks []float64, tieTerm float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks = make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		mid := float64(i+j+1) / 2 // average of ranks i+1 ... j
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}

// exactUpperTail returns P(U >= u) under the null hypothesis for samples
// of size m and n without ties.
func exactUpperTail(m, n int, u float64) float64 {
	counts := uCounts(m, n)
	total, tail := 0.0, 0.0
	for k, c := range counts {
		total += c
		if float64(k) >= u {
			tail += c
		}
	}
	return tail / total
}

// uCounts returns the number of arrangements of m and n observations for
// each value of U, using f(m,n,u) = f(m-1,n,u-n) + f(m,n-1,u).
func uCounts(m, n int) []float64 {
	// prev[j] holds the counts for (i-1, j), cur[j] for (i, j).
	prev := make([][]float64, n+1)
	for j := range prev {
		prev[j] = []float64{1} // zero observations from the first sample
	}
	for i := 1; i <= m; i++ {
		cur := make([][]float64, n+1)
		cur[0] = []float64{1}
		for j := 1; j <= n; j++ {
			c := make([]float64, i*j+1)
			for k, v := range cur[j-1] {
				c[k] += v
			}
			for k, v := range prev[j] {
				c[k+j] += v
			}
			cur[j] = c
		}
		prev = cur
	}
	return prev[n]
}
