package qplot

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/vdobler/qplot/stat"
)

// groupedFrame has five values per category and group. In c1 the groups
// are clearly separated, in c2 they overlap.
func groupedFrame() *DataFrame {
	df := NewDataFrame("grouped", nil)
	values := map[string]map[string][]float64{
		"c1": {"WT": {1, 2, 3, 4, 5}, "KO": {11, 12, 13, 14, 15}},
		"c2": {"WT": {1, 2, 3, 4, 5}, "KO": {1.5, 2.5, 3.5, 4.5, 5.5}},
	}
	var cats, groups []string
	var vals []float64
	for _, c := range []string{"c1", "c2"} {
		for _, g := range []string{"WT", "KO"} {
			for _, v := range values[c][g] {
				cats = append(cats, c)
				groups = append(groups, g)
				vals = append(vals, v)
			}
		}
	}
	df.N = len(vals)
	df.Columns["Category"] = stringField(df.Pool, cats...)
	df.Columns["Group"] = stringField(df.Pool, groups...)
	df.Columns["Value"] = floatField(df.Pool, vals...)
	return df
}

func render(t *testing.T, fig *Figure, format string) []byte {
	t.Helper()
	wt, err := fig.WriterTo(format)
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	_, err = wt.WriteTo(buf)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())
	return buf.Bytes()
}

func TestIndividualSteps(t *testing.T) {
	df := measurementFrame(t)
	p := &Plot{
		Data: df,
		Aes: AesMapping{
			"x": "Origin",
			"y": "Weight",
		},
		Layers: []*Layer{
			{
				Name: "Raw Data",
				Geom: GeomPoint{
					Position: PosSwarm,
					Style:    AesMapping{"fill": "red", "shape": "diamond"},
				},
			},
			{
				Name: "Mean",
				Stat: StatSummary{Error: stat.SD},
				Geom: GeomErrorBar{},
			},
			{
				Name:        "Height",
				DataMapping: AesMapping{"y": "Height", "fill": "Country"},
				Geom:        GeomBar{Position: PosDodge},
			},
		},
		Scales: make(map[string]*Scale),
	}
	for i := range p.Layers {
		p.Layers[i].Plot = p
	}

	// Test PrepareData
	require.NoError(t, p.PrepareData())
	assert.Equal(t, []string{"x", "y"}, p.Layers[0].Data.FieldNames())
	assert.Equal(t, []string{"x", "y"}, p.Layers[1].Data.FieldNames())
	assert.Equal(t, []string{"fill", "x", "y"}, p.Layers[2].Data.FieldNames())
	require.Contains(t, p.Scales, "x")
	require.Contains(t, p.Scales, "y")
	require.Contains(t, p.Scales, "fill")
	assert.True(t, p.Scales["x"].Discrete)
	assert.False(t, p.Scales["y"].Discrete)
	assert.Equal(t, 1.52, p.Scales["y"].DomainMin, "trained on Height too")
	assert.Equal(t, 99.0, p.Scales["y"].DomainMax)

	for _, s := range p.Scales {
		s.Prepare(p)
	}
	assert.Equal(t, []string{"ch", "de", "uk"}, p.Scales["x"].Levels())

	// Test ComputeStatistics
	p.ComputeStatistics()
	mean := p.Layers[1].Data
	assert.Equal(t, []string{"n", "x", "y", "ymax", "ymin"}, mean.FieldNames())
	assert.Equal(t, 3, mean.N)
	assert.Equal(t, 20, p.Layers[0].Data.N, "identity stat")

	// Test RenderGeoms
	p.RenderGeoms()
	require.Len(t, p.Layers[0].Plotters, 1)
	points, ok := p.Layers[0].Plotters[0].(*GrobPoints)
	require.True(t, ok)
	assert.Len(t, points.Points, 20)
	assert.True(t, points.Swarm)
	assert.Equal(t, DiamondPoint, points.Points[0].Shape)

	require.Len(t, p.Layers[1].Plotters, 1)
	_, ok = p.Layers[1].Plotters[0].(*plotter.YErrorBars)
	assert.True(t, ok)

	assert.Len(t, p.Layers[2].Plotters, 20, "one bar per row")
}

func TestBuildBarsWithSignificance(t *testing.T) {
	p := &Plot{
		Data:   groupedFrame(),
		Aes:    AesMapping{"x": "Category", "y": "Value", "fill": "Group"},
		Scales: map[string]*Scale{"fill": DiscreteScale("fill", "WT", "KO")},
		Layers: []*Layer{
			{Name: "bars", Stat: StatSummary{Error: stat.SD}, Geom: GeomBar{Position: PosDodge}},
			{Name: "errors", Stat: StatSummary{Error: stat.SD}, Geom: GeomErrorBar{Position: PosDodge}},
			{Name: "strip", Geom: GeomPoint{
				Position: PosJitterDodge,
				Style:    AesMapping{"fill": "white", "color": "black", "size": "3"},
			}},
			{Name: "signif", Stat: StatSignificance{HideNonSignificant: true}, Geom: GeomBracket{}},
		},
		Title: "Bars",
	}

	gp, err := p.Build()
	require.NoError(t, err)
	require.NotNil(t, gp)

	assert.Len(t, p.Layers[0].Plotters, 4)
	assert.Len(t, p.Layers[1].Plotters, 1)
	require.Len(t, p.Layers[2].Plotters, 1)
	assert.Len(t, p.Layers[2].Plotters[0].(*GrobPoints).Points, 20)

	signif := p.Layers[3].Data
	require.Equal(t, 1, signif.N, "the ns pair in c2 is hidden")
	label := signif.Columns["label"]
	assert.Equal(t, "**", label.String(label.Data[0]))
	require.Len(t, p.Layers[3].Plotters, 2, "bracket line and labels")
	labels, ok := p.Layers[3].Plotters[1].(*plotter.Labels)
	require.True(t, ok)
	assert.Equal(t, []string{"**"}, labels.Labels)
	assert.InDelta(t, 0, labels.XYs[0].X, 1e-9, "bracket spans both bars of c1")
	assert.Greater(t, labels.XYs[0].Y, 15.0)

	assert.Equal(t, -0.5, gp.X.Min)
	assert.Equal(t, 1.5, gp.X.Max)

	png := render(t, &Figure{Plot: gp, DPI: 72}, "png")
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestSignificanceAboveErrorBars(t *testing.T) {
	df := NewDataFrame("spread", nil)
	df.N = 4
	df.Columns["Category"] = stringField(df.Pool, "c", "c", "c", "c")
	df.Columns["Group"] = stringField(df.Pool, "WT", "WT", "KO", "KO")
	df.Columns["Value"] = floatField(df.Pool, 0, 10, 1, 2)

	build := func(kind stat.ErrorKind) *DataFrame {
		p := &Plot{
			Data:   df,
			Aes:    AesMapping{"x": "Category", "y": "Value", "fill": "Group"},
			Scales: map[string]*Scale{"fill": DiscreteScale("fill", "WT", "KO")},
			Layers: []*Layer{
				{Name: "bars", Stat: StatSummary{Error: kind}, Geom: GeomBar{Position: PosDodge}},
				{Name: "signif", Stat: StatSignificance{Error: kind}, Geom: GeomBracket{}},
			},
		}
		_, err := p.Build()
		require.NoError(t, err)
		require.Equal(t, 1, p.Layers[1].Data.N)
		return p.Layers[1].Data
	}

	plain := build(stat.NoError)
	assert.Equal(t, 10.0, plain.Columns["ymax"].Data[0], "largest value")

	// WT has mean 5 and SD 7.07, so its error bar ends above 10.
	sd := build(stat.SD)
	assert.InDelta(t, 5+5*math.Sqrt2, sd.Columns["ymax"].Data[0], 1e-9)
	assert.InDelta(t, 5+5*math.Sqrt2, sd.Columns["top"].Data[0], 1e-9)
}

func TestBuildViolins(t *testing.T) {
	p := &Plot{
		Data:   groupedFrame(),
		Aes:    AesMapping{"x": "Category", "y": "Value", "fill": "Group"},
		Scales: map[string]*Scale{"y": ContinuousScale("y").WithLimits(0, 20)},
		Layers: []*Layer{
			{Name: "violin", Stat: StatDensity{Cut: 1}, Geom: GeomViolin{Position: PosDodge}},
			{Name: "box", Stat: StatBoxplot{}, Geom: GeomBoxplot{Position: PosDodge}},
			{Name: "swarm", Geom: GeomPoint{Position: PosSwarm, Style: AesMapping{"fill": "white"}}},
		},
	}
	gp, err := p.Build()
	require.NoError(t, err)

	assert.Len(t, p.Layers[0].Plotters, 4, "one violin per category and group")
	assert.Len(t, p.Layers[1].Plotters, 12, "whisker, box and median each")
	assert.Equal(t, 0.0, gp.Y.Min)
	assert.Equal(t, 20.0, gp.Y.Max)

	svg := render(t, &Figure{Plot: gp}, "svg")
	assert.Contains(t, string(svg), "<svg")
}

func TestBuildLines(t *testing.T) {
	df := NewDataFrame("lines", nil)
	df.N = 8
	df.Columns["Time"] = Field{Type: Int, Data: []float64{8, 8, 16, 16, 8, 8, 16, 16}, Pool: df.Pool}
	df.Columns["Condition"] = stringField(df.Pool, "A", "A", "A", "A", "B", "B", "B", "B")
	df.Columns["Value"] = floatField(df.Pool, 1, 2, 3, 4, 2, 3, 5, 6)

	y := ContinuousScale("y")
	x := ContinuousScale("x")
	x.Breaks = []float64{8, 16}
	p := &Plot{
		Data:   df,
		Aes:    AesMapping{"x": "Time", "y": "Value", "color": "Condition"},
		Scales: map[string]*Scale{"x": x, "y": y},
		Layers: []*Layer{
			{Name: "band", Stat: StatSummary{Error: stat.SE}, Geom: GeomRibbon{}},
			{Name: "mean", Stat: StatSummary{Error: stat.SE}, Geom: GeomLine{Markers: true}},
			{Name: "raw", Geom: GeomPoint{Style: AesMapping{"color": "white"}}},
		},
	}
	gp, err := p.Build()
	require.NoError(t, err)

	assert.Len(t, p.Layers[0].Plotters, 2)
	assert.Len(t, p.Layers[1].Plotters, 4, "line and markers per condition")
	line := p.Layers[1].Plotters[0].(*plotter.Line)
	assert.Equal(t, plotter.XYs{{X: 8, Y: 1.5}, {X: 16, Y: 3.5}}, line.XYs)

	ticks := gp.X.Tick.Marker.Ticks(gp.X.Min, gp.X.Max)
	require.Len(t, ticks, 2)
	assert.Equal(t, "16", ticks[1].Label)

	render(t, &Figure{Plot: gp, DPI: 72}, "jpg")
}

func TestBuildTiles(t *testing.T) {
	df := infectionFrame()
	mean, err := GroupMean(df, []string{"Tissue", "Infection"}, "Value")
	require.NoError(t, err)

	fill := ContinuousScale("fill").WithLimits(0, 4)
	fill.ColorMap = NewLightColorMap(String2Color("#bb334c"))
	p := &Plot{
		Data:       mean,
		Aes:        AesMapping{"x": "Infection", "y": "Tissue", "fill": "Value"},
		Scales:     map[string]*Scale{"fill": fill},
		Layers:     []*Layer{{Name: "tiles", Geom: GeomTile{Style: AesMapping{"underflow": "white"}}}},
		XRotate:    90,
		HideLegend: true,
	}
	gp, err := p.Build()
	require.NoError(t, err)

	require.Len(t, p.Layers[0].Plotters, 1+3+3, "heat map and grid lines")
	heat, ok := p.Layers[0].Plotters[0].(*plotter.HeatMap)
	require.True(t, ok)
	assert.Equal(t, 0.0, heat.Min)
	assert.Equal(t, 4.0, heat.Max)
	assert.True(t, math.IsNaN(heat.GridXYZ.Z(1, 0)), "Liver/B is empty")
	assert.Equal(t, 4.0, heat.GridXYZ.Z(1, 1))

	fig := &Figure{Plot: gp, ColorBar: NewColorBar(fill.ColorMap, DefaultTheme.FontSize), DPI: 72}
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			require.NotPanics(t, func() { render(t, fig, format) })
		})
	}
}

func TestColorBarBands(t *testing.T) {
	cm := NewLightColorMap(String2Color("#bb334c"))
	cm.SetMin(1.5)
	cm.SetMax(7)
	cb := NewColorBar(cm, DefaultTheme.FontSize)
	assert.Equal(t, 1.5, cb.Y.Min)
	assert.Equal(t, 7.0, cb.Y.Max)

	xmin, xmax, ymin, ymax := colorBands{cm: cm, n: 8}.DataRange()
	assert.Equal(t, []float64{0, 1, 1.5, 7}, []float64{xmin, xmax, ymin, ymax})
}

func TestBuildErrors(t *testing.T) {
	df := groupedFrame()

	p := &Plot{Data: df, Aes: AesMapping{"x": "Nope", "y": "Value"}, Layers: []*Layer{{Geom: GeomPoint{}}}}
	_, err := p.Build()
	assert.ErrorIs(t, err, ErrNoSuchField)

	p = &Plot{Aes: AesMapping{"x": "Category", "y": "Value"}, Layers: []*Layer{{Geom: GeomPoint{}}}}
	_, err = p.Build()
	assert.ErrorIs(t, err, ErrEmptyData)

	obs, logs := observedPlot()
	p = &Plot{
		Data:   df,
		Aes:    AesMapping{"x": "Category", "y": "Value"},
		Layers: []*Layer{{Name: "signif", Stat: StatSignificance{}, Geom: GeomBracket{}}},
		Logger: obs.Logger,
	}
	_, err = p.Build()
	assert.True(t, errors.Is(err, ErrEmptyData))
	assert.NotZero(t, logs.FilterMessageSnippet("needs column fill").Len())
}

func TestMergeAes(t *testing.T) {
	merged := MergeAes(AesMapping{"y": "", "fill": "Group"}, AesMapping{"x": "a", "y": "b"})
	assert.Equal(t, AesMapping{"x": "a", "fill": "Group"}, merged)

	style := MergeStyles(AesMapping{"color": "red"}, DefaultTheme.PointStyle)
	assert.Equal(t, "red", style["color"])
	assert.Equal(t, "5", style["size"])
}
