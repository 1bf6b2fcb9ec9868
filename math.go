package qplot

import (
	"math"
	"sort"
	"strconv"
)

// SortLevels sorts category names in place. If all names are numbers they
// are sorted numerically, otherwise lexically.
func SortLevels(names []string) {
	nums := make([]float64, len(names))
	numeric := true
	for i, n := range names {
		x, err := strconv.ParseFloat(n, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = x
	}
	if !numeric {
		sort.Strings(names)
		return
	}
	sort.Sort(byValue{names, nums})
}

type byValue struct {
	names []string
	nums  []float64
}

func (b byValue) Len() int           { return len(b.names) }
func (b byValue) Less(i, j int) bool { return b.nums[i] < b.nums[j] }
func (b byValue) Swap(i, j int) {
	b.names[i], b.names[j] = b.names[j], b.names[i]
	b.nums[i], b.nums[j] = b.nums[j], b.nums[i]
}

// RoundUp rounds a up to a multiple of b.
func RoundUp(a, b float64) float64 {
	return math.Ceil(a/b) * b
}

// FormatNumber formats x compactly for tick labels.
func FormatNumber(x float64) string {
	if x == math.Trunc(x) && math.Abs(x) < 1e15 {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(x, 'g', 4, 64)
}

// NiceStep returns the smallest of 1, 2, 2.5 and 5 times a power of ten
// which is not less than x.
func NiceStep(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(x)))
	for _, m := range []float64{1, 2, 2.5, 5} {
		if m*mag >= x*(1-1e-12) {
			return m * mag
		}
	}
	return 10 * mag
}
