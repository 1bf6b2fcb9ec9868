package qplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Plot is a layered plot in the style of R's ggplot2: Data is mapped to
// aesthetics, transformed by a statistic and drawn by a geom, once per
// layer. Build renders the result with gonum/plot.
type Plot struct {
	// Data is the data to draw.
	Data *DataFrame

	// Aes describes how fields in Data are mapped to aesthetics.
	Aes AesMapping

	// Layers contains all the layers displayed in the plot.
	Layers []*Layer

	// Scales may be preset, e.g. to fix the order of discrete levels.
	// Missing scales are added while preparing the data.
	Scales map[string]*Scale

	Theme Theme

	Title, XLabel, YLabel string

	// XRotate and YRotate rotate the tick labels, in degrees.
	XRotate, YRotate float64

	HideLegend bool

	// Seed initializes the random jitter of points.
	Seed int64

	// Logger receives warnings about layers which cannot be drawn.
	// Nil discards them.
	Logger *zap.Logger
}

// Layer represents one layer of data.
type Layer struct {
	Plot *Plot
	Name string

	// A nil Data will use the Data from the plot this Layer belongs to.
	Data        *DataFrame
	DataMapping AesMapping

	// Stat is the statistical transform used in this layer, nil is
	// the identity.
	Stat        Stat
	StatMapping AesMapping

	// Geom is the geom to use for this layer.
	Geom        Geom
	GeomMapping AesMapping

	// Plotters are the result of rendering the geom.
	Plotters []plot.Plotter
}

func (p *Plot) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Warnf logs a warning about a problem which does not stop the plot from
// being drawn.
func (p *Plot) Warnf(f string, args ...interface{}) {
	p.logger().Warn(fmt.Sprintf(f, args...))
}

// scaleable lists the aesthetics which get a scale.
var scaleable = map[string]bool{
	"x":     true,
	"y":     true,
	"color": true,
	"fill":  true,
}

// PrepareData is the first step in generating a plot.
// After preparing the data frame the following holds
//   - Layer has a own data frame (maybe a copy of plots data frame)
//   - This data frame has no unused (aka not mapped to aesthetics)
//     columns
//   - The columns name are the aesthetics (e.g. x, y, color...)
//   - Numeric fields mapped to a discrete scale have been discretized.
func (p *Plot) PrepareData() error {
	for _, layer := range p.Layers {
		source := layer.Data
		if source == nil {
			source = p.Data
		}
		if source == nil {
			return fmt.Errorf("layer %s: %w", layer.Name, ErrEmptyData)
		}
		aes := MergeAes(layer.DataMapping, p.Aes)

		data := NewDataFrame(source.Name, source.Pool)
		data.N = source.N
		for _, a := range sortedKeys(aes) {
			f, err := source.Field(aes[a])
			if err != nil {
				return fmt.Errorf("layer %s, aesthetic %s: %w", layer.Name, a, err)
			}
			f = f.Copy()
			if s, ok := p.Scales[a]; ok && s.Discrete && !f.Discrete() {
				f = f.Discretize()
			}
			data.Columns[a] = f
		}
		layer.Data = data

		p.PrepareScales(data, aes)
	}
	return nil
}

// PrepareScales makes sure p contains all scales needed for the
// aesthetics in aes and pre-trains them on data.
func (p *Plot) PrepareScales(data *DataFrame, aes AesMapping) {
	for _, a := range sortedKeys(aes) {
		if !scaleable[a] {
			continue
		}
		f, ok := data.Columns[a]
		if !ok {
			continue
		}
		scale, ok := p.Scales[a]
		if !ok {
			scale = NewScale(a, f)
			p.Scales[a] = scale
		}
		scale.Train(f)
	}
}

// ComputeStatistics computes the statistical transform. Might be the identity.
func (layer *Layer) ComputeStatistics() {
	p := layer.Plot
	if layer.Stat == nil || layer.Geom == nil {
		return
	}

	// Make sure all needed aesthetics (columns) are present in
	// our data frame.
	info := layer.Stat.Info()
	for _, aes := range info.NeededAes {
		if !layer.Data.Has(aes) {
			p.Warnf("Stat %s in layer %s needs column %s",
				layer.Stat.Name(), layer.Name, aes)
			layer.Geom = nil // Don't draw anything.
			return
		}
	}

	usedByStat := NewStringSetFrom(info.NeededAes)
	usedByStat.Join(NewStringSetFrom(info.OptionalAes))
	fields := NewStringSetFrom(layer.Data.FieldNames())
	fields.Remove(usedByStat)

	switch {
	case len(fields) == 0 || info.ExtraFieldHandling == IgnoreExtraFields:
		layer.Data = layer.Stat.Apply(layer.Data, p)
	case info.ExtraFieldHandling == FailOnExtraFields:
		p.Warnf("Stat %s in layer %s cannot cope with excess fields %v",
			layer.Stat.Name(), layer.Name, fields.Elements())
		layer.Geom = nil
		return
	default:
		extra := fields.Elements()
		for _, f := range extra {
			if !layer.Data.Columns[f].Discrete() {
				p.Warnf("Stat %s in layer %s cannot cope with continuous excess field %s",
					layer.Stat.Name(), layer.Name, f)
				layer.Geom = nil
				return
			}
		}
		layer.Data = layer.applyGrouped(extra)
	}

	if layer.Data == nil || layer.Data.N == 0 {
		p.Warnf("Stat %s in layer %s produced no data", layer.Stat.Name(), layer.Name)
		layer.Geom = nil
		return
	}

	// The stat may produce new columns which are mapped to aesthetics
	// by StatMapping.
	for a, f := range layer.StatMapping {
		layer.Data.Rename(f, a)
	}
	p.PrepareScales(layer.Data, layer.StatMapping)
	for a := range layer.StatMapping {
		if s, ok := p.Scales[a]; ok {
			s.Prepare(p)
		}
	}
}

// applyGrouped applies the layer's stat once for every combination of
// levels of the discrete fields extra and stitches the results together.
func (layer *Layer) applyGrouped(extra []string) *DataFrame {
	parts := []*DataFrame{layer.Data}
	for _, ef := range extra {
		var split []*DataFrame
		for _, part := range parts {
			levels := Levels(part, ef).Elements()
			split = append(split, Partition(part, ef, levels)...)
		}
		parts = split
	}

	var result *DataFrame
	for _, part := range parts {
		if part.N == 0 {
			continue
		}
		consts := make(map[string]Field, len(extra))
		for _, ef := range extra {
			consts[ef] = part.Columns[ef]
			part.Delete(ef)
		}
		res := layer.Stat.Apply(part, layer.Plot)
		if res == nil || res.N == 0 {
			continue
		}
		for ef, f := range consts {
			res.Columns[ef] = f.Const(f.Data[0], res.N)
		}
		if result == nil {
			result = res
		} else if err := result.Append(res); err != nil {
			layer.Plot.Warnf("Layer %s: %s", layer.Name, err)
		}
	}
	return result
}

func (p *Plot) ComputeStatistics() {
	for _, layer := range p.Layers {
		layer.ComputeStatistics()
	}
}

// RenderGeoms renames stat generated fields to the slots the geom
// understands and lets the geom produce its plotters.
func (p *Plot) RenderGeoms() {
	for _, layer := range p.Layers {
		if layer.Geom == nil {
			continue
		}
		for aes, field := range layer.GeomMapping {
			layer.Data.Rename(field, aes)
		}

		// Make sure all needed slots are present in the data frame
		slots := NewStringSetFrom(layer.Geom.NeededSlots())
		slots.Remove(NewStringSetFrom(layer.Data.FieldNames()))
		if len(slots) > 0 {
			p.Warnf("Missing slots in geom %s in layer %s: %v",
				layer.Geom.Name(), layer.Name, slots.Elements())
			layer.Geom = nil
			continue
		}

		layer.Plotters = layer.Geom.Render(p, layer.Data, layer.Geom.Aes(p))
	}
}

// Build runs all steps and returns the gonum plot.
func (p *Plot) Build() (*plot.Plot, error) {
	for i := range p.Layers {
		p.Layers[i].Plot = p
	}
	if p.Scales == nil {
		p.Scales = make(map[string]*Scale)
	}

	// Prepare data: map aesthetics, add scales and clean data frame.
	// Mapped scales are pre-trained.
	if err := p.PrepareData(); err != nil {
		return nil, err
	}
	for _, a := range sortedScales(p.Scales) {
		p.Scales[a].Prepare(p)
	}

	p.ComputeStatistics()
	p.RenderGeoms()

	gp := plot.New()
	p.applyTheme(gp)
	gp.Title.Text = p.Title
	gp.X.Label.Text = p.XLabel
	gp.Y.Label.Text = p.YLabel

	drawn := 0
	for _, layer := range p.Layers {
		if len(layer.Plotters) == 0 {
			continue
		}
		gp.Add(layer.Plotters...)
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("plot %q: no layer could be drawn: %w", p.Title, ErrEmptyData)
	}

	p.setupAxis(&gp.X, p.Scales["x"], p.XRotate, true)
	p.setupAxis(&gp.Y, p.Scales["y"], p.YRotate, false)

	if !p.HideLegend {
		p.addLegend(gp)
	}
	return gp, nil
}

func (p *Plot) applyTheme(gp *plot.Plot) {
	size := p.Theme.fontSize()
	gp.BackgroundColor = p.Theme.Background
	if gp.BackgroundColor == nil {
		gp.BackgroundColor = color.White
	}
	gp.Title.TextStyle.Font.Size = size * 1.2
	for _, ax := range []*plot.Axis{&gp.X, &gp.Y} {
		ax.Label.TextStyle.Font.Size = size * 1.1
		ax.Tick.Label.Font.Size = size
	}
	gp.Legend.TextStyle.Font.Size = size
}

// setupAxis sets range, ticks and tick label rotation of ax from the
// trained scale s.
func (p *Plot) setupAxis(ax *plot.Axis, s *Scale, rotate float64, horizontal bool) {
	if s != nil {
		if s.Discrete {
			n := len(s.Levels())
			ax.Min, ax.Max = -0.5, float64(n)-0.5
			ax.Tick.Marker = plot.ConstantTicks(s.Ticks())
		} else {
			if s.Log {
				ax.Scale = plot.LogScale{}
				ax.Tick.Marker = plot.LogTicks{Prec: -1}
			}
			if len(s.Breaks) > 0 {
				ax.Tick.Marker = plot.ConstantTicks(s.Ticks())
			}
			if !math.IsNaN(s.Limits[0]) {
				ax.Min = s.Limits[0]
			}
			if !math.IsNaN(s.Limits[1]) {
				ax.Max = s.Limits[1]
			}
		}
	}

	if rotate == 0 {
		return
	}
	ax.Tick.Label.Rotation = rotate * math.Pi / 180
	if horizontal {
		ax.Tick.Label.XAlign = text.XRight
		ax.Tick.Label.YAlign = text.YCenter
	} else {
		ax.Tick.Label.XAlign = text.XCenter
		ax.Tick.Label.YAlign = text.YBottom
	}
}

// legendScale returns the aesthetic of the discrete color scale shown in
// the legend, fill taking precedence over color.
func (p *Plot) legendScale() (string, *Scale) {
	for _, a := range []string{"fill", "color"} {
		if s, ok := p.Scales[a]; ok && s.Discrete {
			return a, s
		}
	}
	return "", nil
}

func (p *Plot) addLegend(gp *plot.Plot) {
	aes, s := p.legendScale()
	if s == nil {
		return
	}
	var keyer legendKeyer
	for _, layer := range p.Layers {
		if k, ok := layer.Geom.(legendKeyer); ok && len(layer.Plotters) > 0 {
			keyer = k
			break
		}
	}
	if keyer == nil {
		return
	}
	for i, level := range s.Levels() {
		thumb := keyer.Key(p, s.LevelColor(i))
		if thumb != nil {
			gp.Legend.Add(level, thumb)
		}
	}
	gp.Legend.Top = true
	gp.Legend.YOffs = -vg.Points(2)
	p.logger().Debug("legend", zap.String("aesthetic", aes), zap.Strings("levels", s.Levels()))
}

func sortedKeys(m AesMapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedScales(m map[string]*Scale) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AesMapping controls the mapping of fields of a data frame to aesthetics.
//
// In a data mapping the values are field names. In a style mapping the
// values are fixed settings like "#222222" for a color or "5" for a size.
type AesMapping map[string]string

func (m AesMapping) Copy() AesMapping {
	c := make(AesMapping, len(m))
	for a, n := range m {
		c[a] = n
	}
	return c
}

// MergeAes merges the mappings ams, earlier ones winning. An empty value
// clears a mapping inherited from a later one.
func MergeAes(ams ...AesMapping) AesMapping {
	merged := MergeStyles(ams...)
	for k, v := range merged {
		if v == "" {
			delete(merged, k)
		}
	}
	return merged
}

// -------------------------------------------------------------------------
// Position Adjustments

type PositionAdjust int

const (
	PosIdentity PositionAdjust = iota
	PosJitter
	PosDodge
	PosJitterDodge
	PosSwarm
)

func (pa PositionAdjust) dodged() bool {
	return pa == PosDodge || pa == PosJitterDodge || pa == PosSwarm
}
