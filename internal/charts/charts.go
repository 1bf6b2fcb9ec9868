// Package charts turns recipes into figures. Each chart kind has a
// builder which maps the recipe onto the layers of a qplot.Plot; Run
// performs the whole pipeline from reading the data to writing the image.
package charts

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot/vg"

	"github.com/vdobler/qplot"
	"github.com/vdobler/qplot/internal/config"
	"github.com/vdobler/qplot/stat"
)

// A Builder draws the chart described by r from the filtered data df.
type Builder func(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) (*qplot.Figure, error)

// Builders maps each chart kind to its builder.
var Builders = map[config.Kind]Builder{
	config.Line:    Line,
	config.Heatmap: Heatmap,
	config.Violin:  Violin,
	config.Bar:     Bar,
}

// headRows is the number of rows of the filtered data logged in debug mode.
const headRows = 5

// Run loads the data of r, draws the chart and saves it. It returns the
// path of the written image.
func Run(ctx context.Context, r *config.Recipe, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	build, ok := Builders[r.Kind]
	if !ok {
		return "", fmt.Errorf("no builder for %s charts", r.Kind)
	}

	df, err := Load(r, log)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fig, err := build(r, df, log)
	if err != nil {
		return "", fmt.Errorf("%s chart: %w", r.Kind, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := OutputPath(r)
	if err != nil {
		return "", err
	}
	if err := fig.Save(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	log.Info("chart written",
		zap.String("kind", string(r.Kind)),
		zap.String("file", path),
		zap.Int("rows", df.N))
	return path, nil
}

// Load reads the input file of r and applies its filters in the order
// match, IQR, exclude.
func Load(r *config.Recipe, log *zap.Logger) (*qplot.DataFrame, error) {
	df, err := qplot.ReadCSVFile(r.Input.File, qplot.ReadOptions{
		Delimiter: r.Delimiter(),
		IndexCol:  r.Input.IndexCol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.Input.File, err)
	}
	log.Debug("data loaded", zap.String("file", r.Input.File), zap.Int("rows", df.N),
		zap.Strings("columns", df.FieldNames()))

	if m := r.Filters.Match; m != nil {
		if df, err = qplot.Filter(df, m.Column, m.Value); err != nil {
			return nil, err
		}
		log.Debug("match filter", zap.String("column", m.Column),
			zap.Any("value", m.Value), zap.Int("rows", df.N))
	}

	if f := r.Filters.IQR; f != nil {
		mode, err := r.BoundMode()
		if err != nil {
			return nil, err
		}
		filtered, b, err := qplot.IQRFilter(df, f.Column, mode)
		if err != nil {
			return nil, err
		}
		log.Debug("IQR filter", zap.String("column", f.Column), zap.Stringer("mode", mode),
			zap.Float64("q1", b.Q1), zap.Float64("q3", b.Q3), zap.Float64("iqr", b.IQR()),
			zap.Float64("low", b.Low), zap.Float64("high", b.High),
			zap.Int("dropped", df.N-filtered.N))
		df = filtered
	}

	if e := r.Filters.Exclude; e != nil && len(e.Values) > 0 {
		if df, err = qplot.Exclude(df, e.Column, e.Values...); err != nil {
			return nil, err
		}
		log.Debug("exclude filter", zap.String("column", e.Column), zap.Int("rows", df.N))
	}

	if df.N == 0 {
		return nil, fmt.Errorf("%s: no rows left after filtering: %w", r.Input.File, qplot.ErrEmptyData)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		var sb strings.Builder
		df.Head(headRows).Print(&sb)
		log.Debug("filtered data\n" + sb.String())
	}
	return df, nil
}

// OutputPath is the file the chart of r is written to: Output.File if set,
// else a name derived from the input file or the output title.
func OutputPath(r *config.Recipe) (string, error) {
	if r.Output.File != "" {
		return r.Output.File, nil
	}
	name := r.Input.File
	var opts []qplot.OutputOption
	if r.Output.Title != "" {
		name = r.Output.Title
		opts = append(opts, qplot.TitleBased())
	}
	if r.Output.Infix != "" {
		opts = append(opts, qplot.WithInfix(r.Output.Infix))
	}
	if r.Output.Dir != "" {
		opts = append(opts, qplot.InDir(r.Output.Dir))
	}
	return qplot.OutputFile(name, r.Kind.PlotType(), r.Output.Format, opts...)
}

// -------------------------------------------------------------------------
// Helpers shared by the builders

func num(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func theme(r *config.Recipe) qplot.Theme {
	t := qplot.DefaultTheme
	if len(r.Style.Palette) > 0 {
		t.Palette = r.Style.Palette
	}
	return t
}

func limit(x *float64) float64 {
	if x == nil {
		return math.NaN()
	}
	return *x
}

func yScale(r *config.Recipe) *qplot.Scale {
	return qplot.ContinuousScale("y").WithLimits(limit(r.Style.YMin), limit(r.Style.YMax))
}

func hueScale(aes string, r *config.Recipe) *qplot.Scale {
	s := qplot.DiscreteScale(aes, r.Order.Hue...)
	s.Values = r.Style.Palette
	return s
}

func newPlot(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) *qplot.Plot {
	return &qplot.Plot{
		Data:       df,
		Theme:      theme(r),
		Title:      r.Style.Title,
		XLabel:     r.Style.XLabel,
		YLabel:     r.Style.YLabel,
		XRotate:    r.Style.XRotate,
		YRotate:    r.Style.YRotate,
		HideLegend: r.Style.HideLegend,
		Seed:       1,
		Logger:     log,
	}
}

func figure(r *config.Recipe, p *qplot.Plot) (*qplot.Figure, error) {
	gp, err := p.Build()
	if err != nil {
		return nil, err
	}
	return &qplot.Figure{
		Plot:   gp,
		Width:  vg.Length(r.Output.Width) * vg.Inch,
		Height: vg.Length(r.Output.Height) * vg.Inch,
		DPI:    r.Output.DPI,
	}, nil
}

// pointStyle are the white dots with black edge overlaid on violins and
// bars.
func pointStyle(r *config.Recipe) qplot.AesMapping {
	style := qplot.AesMapping{"fill": "white", "color": "black", "shape": "solid-circle"}
	if r.Style.PointSize > 0 {
		style["size"] = num(r.Style.PointSize)
	}
	if r.Style.PointEdgeWidth > 0 {
		style["linewidth"] = num(r.Style.PointEdgeWidth)
	}
	return style
}

// edgeStyle is the black outline of bars and violins.
func edgeStyle(r *config.Recipe) qplot.AesMapping {
	style := qplot.AesMapping{"color": "black", "saturation": "1"}
	if r.Style.LineWidth > 0 {
		style["size"] = num(r.Style.LineWidth)
	}
	return style
}

// categories is the number of x slots the chart will show.
func categories(r *config.Recipe, df *qplot.DataFrame) int {
	if n := len(r.Order.X); n > 0 {
		return n
	}
	if n := len(qplot.Levels(df, r.Columns.X)); n > 0 {
		return n
	}
	return 1
}

// -------------------------------------------------------------------------
// The four charts

// Line draws the mean of y per x and hue as a line with markers and an
// error band, overlaid with the raw observations.
func Line(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) (*qplot.Figure, error) {
	errKind, err := r.ErrorKind()
	if err != nil {
		return nil, err
	}
	x := qplot.ContinuousScale("x")
	x.Breaks = r.Style.XTicks

	p := newPlot(r, df, log)
	p.Aes = qplot.AesMapping{"x": r.Columns.X, "y": r.Columns.Y}
	p.Scales = map[string]*qplot.Scale{"x": x, "y": yScale(r)}
	if r.Columns.Hue != "" {
		p.Aes["color"] = r.Columns.Hue
		p.Scales["color"] = hueScale("color", r)
	}
	if p.XLabel == "" {
		p.XLabel = r.Columns.X
	}
	if p.YLabel == "" {
		p.YLabel = r.Columns.Y
	}

	lineStyle := qplot.AesMapping{}
	if r.Style.LineWidth > 0 {
		lineStyle["size"] = num(r.Style.LineWidth)
	}
	if errKind != stat.NoError {
		p.Layers = append(p.Layers, &qplot.Layer{
			Name: "error band",
			Stat: qplot.StatSummary{Error: errKind},
			Geom: qplot.GeomRibbon{},
		})
	}
	p.Layers = append(p.Layers, &qplot.Layer{
		Name: "mean",
		Stat: qplot.StatSummary{Error: errKind},
		Geom: qplot.GeomLine{Style: lineStyle, Markers: r.Style.Markers},
	})
	if r.Stats.Scatter {
		style := qplot.AesMapping{"color": "white", "linewidth": "0.5"}
		if r.Style.PointSize > 0 {
			style["size"] = num(r.Style.PointSize)
		}
		p.Layers = append(p.Layers, &qplot.Layer{
			Name: "observations",
			Geom: qplot.GeomPoint{Style: style},
		})
	}
	return figure(r, p)
}

// Violin draws a violin per category and hue with a swarm of the
// observations on top.
func Violin(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) (*qplot.Figure, error) {
	p := newPlot(r, df, log)
	p.Aes = qplot.AesMapping{"x": r.Columns.X, "y": r.Columns.Y, "fill": r.Columns.Hue}
	p.Scales = map[string]*qplot.Scale{
		"x":    qplot.DiscreteScale("x", r.Order.X...),
		"y":    yScale(r),
		"fill": hueScale("fill", r),
	}
	p.Layers = []*qplot.Layer{
		{
			Name: "violin",
			Stat: qplot.StatDensity{Cut: r.Stats.Cut},
			Geom: qplot.GeomViolin{Position: qplot.PosDodge, Style: edgeStyle(r)},
		},
		{
			Name: "swarm",
			Geom: qplot.GeomPoint{Position: qplot.PosSwarm, Style: pointStyle(r)},
		},
	}
	return figure(r, p)
}

// Bar draws the mean per category and hue as bars with error bars, a
// jittered strip of the observations and significance brackets between
// the hue groups of each category.
func Bar(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) (*qplot.Figure, error) {
	errKind, err := r.ErrorKind()
	if err != nil {
		return nil, err
	}
	p := newPlot(r, df, log)
	p.Aes = qplot.AesMapping{"x": r.Columns.X, "y": r.Columns.Y, "fill": r.Columns.Hue}
	p.Scales = map[string]*qplot.Scale{
		"x":    qplot.DiscreteScale("x", r.Order.X...),
		"y":    yScale(r),
		"fill": hueScale("fill", r),
	}

	errStyle := qplot.AesMapping{"size": "0.75"}
	if r.Style.CapSize > 0 {
		// Caps are relative to the width of a category.
		slot := 72 * r.Output.Width * 0.85 / float64(categories(r, df))
		errStyle["capwidth"] = num(r.Style.CapSize * slot)
	}
	p.Layers = []*qplot.Layer{
		{
			Name: "bars",
			Stat: qplot.StatSummary{Error: errKind},
			Geom: qplot.GeomBar{Position: qplot.PosDodge, Style: edgeStyle(r)},
		},
	}
	if errKind != stat.NoError {
		p.Layers = append(p.Layers, &qplot.Layer{
			Name: "error bars",
			Stat: qplot.StatSummary{Error: errKind},
			Geom: qplot.GeomErrorBar{Position: qplot.PosDodge, Style: errStyle},
		})
	}
	p.Layers = append(p.Layers, &qplot.Layer{
		Name: "strip",
		Geom: qplot.GeomPoint{Position: qplot.PosJitterDodge, Style: pointStyle(r)},
	})
	if r.Stats.Significance {
		loc := r.Stats.BracketLoc
		if loc == "" {
			loc = "inside"
		}
		p.Layers = append(p.Layers, &qplot.Layer{
			Name: "significance",
			Stat: qplot.StatSignificance{HideNonSignificant: r.Stats.HideNS, Error: errKind},
			Geom: qplot.GeomBracket{Style: qplot.AesMapping{"loc": loc}},
		})
	}
	return figure(r, p)
}

// Heatmap draws the mean of the value per row and column level, or per
// plate well, in a light palette. With a threshold cells below it are
// drawn in the under color.
func Heatmap(r *config.Recipe, df *qplot.DataFrame, log *zap.Logger) (*qplot.Figure, error) {
	var grid *qplot.Grid
	var err error
	if r.Columns.Well != "" {
		wells, err := qplot.SplitWellPositions(df, r.Columns.Well)
		if err != nil {
			return nil, err
		}
		if grid, err = qplot.Pivot(wells, "row", "column", r.Columns.Value); err != nil {
			return nil, err
		}
	} else {
		mean, err := qplot.GroupMean(df, []string{r.Columns.Rows, r.Columns.Cols}, r.Columns.Value)
		if err != nil {
			return nil, err
		}
		if grid, err = qplot.Pivot(mean, r.Columns.Rows, r.Columns.Cols, r.Columns.Value); err != nil {
			return nil, err
		}
	}

	// The color range spans 0 (or the threshold) to the largest single
	// observation, not the largest mean.
	vmin := 0.0
	tileStyle := qplot.AesMapping{}
	if r.Style.Threshold != nil {
		vmin = *r.Style.Threshold
		tileStyle["underflow"] = r.Style.UnderColor
	}
	_, vmax, _, _ := qplot.MinMax(df, r.Columns.Value)
	if math.IsNaN(vmax) || vmax <= vmin {
		log.Warn("empty color range", zap.Float64("vmin", vmin), zap.Float64("vmax", vmax))
		vmax = vmin + 1
	}
	if r.Style.LineWidth > 0 {
		tileStyle["size"] = num(r.Style.LineWidth)
	} else {
		tileStyle["size"] = "0"
	}

	fill := qplot.ContinuousScale("fill").WithLimits(vmin, vmax)
	cm := qplot.NewLightColorMap(qplot.String2Color(r.Style.TopColor))
	fill.ColorMap = cm
	x := qplot.DiscreteScale("x", grid.ColLevels...)
	y := qplot.DiscreteScale("y", grid.RowLevels...)
	y.Reverse = true

	p := newPlot(r, grid.DataFrame(df.Pool), log)
	p.Aes = qplot.AesMapping{"x": grid.ColName, "y": grid.RowName, "fill": grid.ValueName}
	p.Scales = map[string]*qplot.Scale{"x": x, "y": y, "fill": fill}
	p.HideLegend = true
	if p.XLabel == "" {
		p.XLabel = grid.ColName
	}
	if p.YLabel == "" {
		p.YLabel = grid.RowName
	}
	p.Layers = []*qplot.Layer{{Name: "tiles", Geom: qplot.GeomTile{Style: tileStyle}}}

	fig, err := figure(r, p)
	if err != nil {
		return nil, err
	}
	fig.ColorBar = qplot.NewColorBar(cm, p.Theme.FontSize)
	return fig, nil
}
