package qplot

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/vdobler/qplot/stat"
)

// Stat is the interface of statistical transform.
//
// Statistical transform take a data frame and produce an other data frame.
// This is typically done by "summarizing", "modeling" or "transforming"
// the data in a statistically significant way.
type Stat interface {
	// Name returns the name of this statistic.
	Name() string

	// Apply this statistic to data. The plot can be used to
	// access the prepared scales.
	Apply(data *DataFrame, p *Plot) *DataFrame

	// Info returns the StatInfo which describes how this
	// statistic can be used.
	Info() StatInfo
}

// StatInfo contains information about how a stat can be used.
type StatInfo struct {
	// NeededAes are the aesthetics which must be present in the
	// data frame. If not all needed aesthetics are mapped this
	// statistics cannot be applied.
	NeededAes []string

	// OptionalAes are the aesthetics which are used by this
	// statistics if present, but it is no error if they are
	// not mapped.
	OptionalAes []string

	ExtraFieldHandling ExtraFieldHandling
}

type ExtraFieldHandling int

const (
	IgnoreExtraFields ExtraFieldHandling = iota
	FailOnExtraFields
	GroupOnExtraFields
)

// groupY collects the finite y values of data per distinct x.
// The x values are returned in ascending order.
func groupY(data *DataFrame) ([]float64, map[float64][]float64) {
	xd, yd := data.Columns["x"].Data, data.Columns["y"].Data
	ys := make(map[float64][]float64)
	for i := 0; i < data.N; i++ {
		if math.IsNaN(xd[i]) || math.IsNaN(yd[i]) {
			continue
		}
		ys[xd[i]] = append(ys[xd[i]], yd[i])
	}
	xs := NewFloatSet()
	for x := range ys {
		xs.Add(x)
	}
	return xs.Elements(), ys
}

// -------------------------------------------------------------------------
// StatSummary

// StatSummary computes the mean of y for each x together with an error
// interval. The result has fields x, y, ymin, ymax and n.
type StatSummary struct {
	Error stat.ErrorKind
}

var _ Stat = StatSummary{}

func (StatSummary) Name() string { return "StatSummary" }

func (StatSummary) Info() StatInfo {
	return StatInfo{
		NeededAes:          []string{"x", "y"},
		ExtraFieldHandling: GroupOnExtraFields,
	}
}

func (s StatSummary) Apply(data *DataFrame, _ *Plot) *DataFrame {
	if data == nil || data.N == 0 {
		return nil
	}
	xs, ys := groupY(data)
	n := len(xs)

	pool := data.Pool
	xf := NewField(n, data.Columns["x"].Type, pool)
	yf, nf := NewField(n, Float, pool), NewField(n, Int, pool)
	yminf, ymaxf := NewField(n, Float, pool), NewField(n, Float, pool)
	for i, x := range xs {
		sum := stat.Summarize(ys[x])
		xf.Data[i] = x
		yf.Data[i] = sum.Mean
		yminf.Data[i], ymaxf.Data[i] = sum.Interval(s.Error)
		nf.Data[i] = float64(sum.N)
	}

	result := NewDataFrame(fmt.Sprintf("summary of %s", data.Name), pool)
	result.N = n
	result.Columns["x"] = xf
	result.Columns["y"] = yf
	result.Columns["ymin"] = yminf
	result.Columns["ymax"] = ymaxf
	result.Columns["n"] = nf
	return result
}

// -------------------------------------------------------------------------
// StatDensity

// StatDensity estimates the density of y for each x with a Gaussian
// kernel. The result has fields x, y (the evaluation grid) and density
// which is scaled so that its maximum is 1 for each x.
type StatDensity struct {
	// Cut extends the grid by Cut bandwidths beyond the data.
	Cut float64

	// Bandwidth of the kernel, 0 selects Scott's rule.
	Bandwidth float64

	// GridSize is the number of evaluation points, default 100.
	GridSize int
}

var _ Stat = StatDensity{}

func (StatDensity) Name() string { return "StatDensity" }

func (StatDensity) Info() StatInfo {
	return StatInfo{
		NeededAes:          []string{"x", "y"},
		ExtraFieldHandling: GroupOnExtraFields,
	}
}

func (s StatDensity) Apply(data *DataFrame, _ *Plot) *DataFrame {
	if data == nil || data.N == 0 {
		return nil
	}
	xs, ys := groupY(data)

	pool := data.Pool
	result := NewDataFrame(fmt.Sprintf("density of %s", data.Name), pool)
	xf := NewField(0, data.Columns["x"].Type, pool)
	yf, df := NewField(0, Float, pool), NewField(0, Float, pool)
	for _, x := range xs {
		d := stat.KDE(ys[x], s.Bandwidth, s.Cut, s.GridSize)
		max := d.Max()
		for i, y := range d.Y {
			xf.Data = append(xf.Data, x)
			yf.Data = append(yf.Data, y)
			if max > 0 {
				df.Data = append(df.Data, d.Density[i]/max)
			} else {
				df.Data = append(df.Data, 0)
			}
		}
	}
	result.N = len(xf.Data)
	result.Columns["x"] = xf
	result.Columns["y"] = yf
	result.Columns["density"] = df
	return result
}

// -------------------------------------------------------------------------
// StatBoxplot

// StatBoxplot computes the five numbers of a box plot for each x.
type StatBoxplot struct {
	// Coef is the whisker length in units of the IQR, default 1.5.
	Coef float64
}

var _ Stat = StatBoxplot{}

func (StatBoxplot) Name() string { return "StatBoxplot" }

func (StatBoxplot) Info() StatInfo {
	return StatInfo{
		NeededAes:          []string{"x", "y"},
		OptionalAes:        []string{},
		ExtraFieldHandling: GroupOnExtraFields,
	}
}

func (s StatBoxplot) Apply(data *DataFrame, _ *Plot) *DataFrame {
	if data == nil || data.N == 0 {
		return nil
	}
	xs, ys := groupY(data)
	n := len(xs)

	pool := data.Pool
	xf := NewField(n, data.Columns["x"].Type, pool)
	medf := NewField(n, Float, pool)
	minf, maxf := NewField(n, Float, pool), NewField(n, Float, pool)
	lowf, highf := NewField(n, Float, pool), NewField(n, Float, pool)
	q1f, q3f := NewField(n, Float, pool), NewField(n, Float, pool)

	for i, x := range xs {
		b := stat.BoxPlot(ys[x], s.Coef)
		xf.Data[i] = x
		minf.Data[i] = b.Min
		lowf.Data[i] = b.Low
		q1f.Data[i] = b.Q1
		medf.Data[i] = b.Med
		q3f.Data[i] = b.Q3
		highf.Data[i] = b.High
		maxf.Data[i] = b.Max
	}

	result := NewDataFrame(fmt.Sprintf("boxplot of %s", data.Name), pool)
	result.N = n
	result.Columns["x"] = xf
	result.Columns["min"] = minf
	result.Columns["low"] = lowf
	result.Columns["q1"] = q1f
	result.Columns["mid"] = medf
	result.Columns["q3"] = q3f
	result.Columns["high"] = highf
	result.Columns["max"] = maxf
	return result
}

// -------------------------------------------------------------------------
// StatSignificance

// StatSignificance compares the y values of every pair of fill levels
// inside each x category with a two-sided Mann-Whitney U test.
//
// The result has one row per tested pair with fields x, fill1, fill2 (the
// compared levels), p, label (the star rating), ymax (the highest point
// of the two groups), top and bottom (the extent of all data). The highest
// point of a group is its largest value or the upper end of its error bar,
// whichever is higher.
type StatSignificance struct {
	// HideNonSignificant drops pairs rated "ns".
	HideNonSignificant bool

	// Error is the error drawn around the group means, NoError if none.
	Error stat.ErrorKind
}

var _ Stat = StatSignificance{}

func (StatSignificance) Name() string { return "StatSignificance" }

func (StatSignificance) Info() StatInfo {
	return StatInfo{
		NeededAes:          []string{"x", "y", "fill"},
		ExtraFieldHandling: IgnoreExtraFields,
	}
}

func (s StatSignificance) Apply(data *DataFrame, p *Plot) *DataFrame {
	if data == nil || data.N == 0 {
		return nil
	}
	xs, fs := p.Scales["x"], p.Scales["fill"]
	if xs == nil || fs == nil || !xs.Discrete || !fs.Discrete {
		p.Warnf("StatSignificance needs discrete x and fill scales")
		return nil
	}
	xf, yf, ff := data.Columns["x"], data.Columns["y"], data.Columns["fill"]

	groups := make(map[stat.Group][]float64)
	bottom, top, _, _ := yf.MinMax()
	for i := 0; i < data.N; i++ {
		y := yf.Data[i]
		if math.IsNaN(y) {
			continue
		}
		g := stat.Group{Category: xf.String(xf.Data[i]), Hue: ff.String(ff.Data[i])}
		groups[g] = append(groups[g], y)
	}
	reach := make(map[stat.Group]float64, len(groups))
	for g, ys := range groups {
		_, hi := stat.Summarize(ys).Interval(s.Error)
		reach[g] = hi
		for _, y := range ys {
			reach[g] = math.Max(reach[g], y)
		}
		top = math.Max(top, reach[g])
	}

	pool := data.Pool
	result := NewDataFrame(fmt.Sprintf("significance of %s", data.Name), pool)
	cols := map[string]*Field{}
	for _, name := range []string{"x", "fill1", "fill2", "label"} {
		f := NewField(0, String, pool)
		cols[name] = &f
	}
	for _, name := range []string{"p", "ymax", "top", "bottom"} {
		f := NewField(0, Float, pool)
		cols[name] = &f
	}
	add := func(name string, v float64) { cols[name].Data = append(cols[name].Data, v) }
	str := func(s string) float64 { return float64(pool.Add(s)) }

	log := p.logger()
	for _, pair := range stat.Pairs(xs.Levels(), fs.Levels()) {
		a, b := groups[pair[0]], groups[pair[1]]
		res, err := stat.MannWhitney(a, b)
		if err != nil {
			p.Warnf("Cannot compare %v with %v: %s", pair[0], pair[1], err)
			continue
		}
		label := stat.Stars(res.PValue)
		log.Debug("Mann-Whitney U test",
			zap.String("category", pair[0].Category),
			zap.String("group1", pair[0].Hue),
			zap.String("group2", pair[1].Hue),
			zap.Float64("U", res.Statistic),
			zap.Float64("p", res.PValue),
			zap.Bool("exact", res.Exact),
			zap.String("label", label))
		if s.HideNonSignificant && !stat.Significant(res.PValue) {
			continue
		}
		ymax := math.Max(reach[pair[0]], reach[pair[1]])
		add("x", str(pair[0].Category))
		add("fill1", str(pair[0].Hue))
		add("fill2", str(pair[1].Hue))
		add("label", str(label))
		add("p", res.PValue)
		add("ymax", ymax)
		add("top", top)
		add("bottom", bottom)
	}

	result.N = len(cols["p"].Data)
	for name, f := range cols {
		result.Columns[name] = *f
	}
	return result
}
