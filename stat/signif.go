package stat

// Threshold maps p-values at or below Cutoff to Symbol.
type Threshold struct {
	Cutoff float64
	Symbol string
}

// StarThresholds is the usual star notation, most significant first.
var StarThresholds = []Threshold{
	{1e-4, "****"},
	{1e-3, "***"},
	{1e-2, "**"},
	{5e-2, "*"},
	{1, "ns"},
}

// Stars formats p in star notation. NaN is reported as "ns".
func Stars(p float64) string {
	for _, t := range StarThresholds {
		if p <= t.Cutoff {
			return t.Symbol
		}
	}
	return "ns"
}

// Significant reports whether p reaches the weakest star threshold.
func Significant(p float64) bool {
	return p <= 5e-2
}

// Group identifies one box (category and hue) in a grouped chart.
type Group struct {
	Category, Hue string
}

// Pair of groups to compare.
type Pair [2]Group

// Pairs returns, for each category, every pair of hues (h_i, h_j) with
// i < j in hue order.
func Pairs(categories, hues []string) []Pair {
	var pairs []Pair
	for _, c := range categories {
		for i := 0; i < len(hues)-1; i++ {
			for j := i + 1; j < len(hues); j++ {
				pairs = append(pairs, Pair{{c, hues[i]}, {c, hues[j]}})
			}
		}
	}
	return pairs
}
