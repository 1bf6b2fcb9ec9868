package qplot

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vdobler/qplot/geom"
)

// Geom is a geometrical object, a type of visual for the plot.
type Geom interface {
	Name() string            // The name of the geom.
	NeededSlots() []string   // The needed slots to render this geom.
	OptionalSlots() []string // The optional slots this geom understands.

	// Aes returns the merged default (fixed) aesthetics.
	Aes(p *Plot) AesMapping

	// Render interpretes data as the specific geom and produces the
	// gonum plotters drawing it.
	Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter
}

// legendKeyer is implemented by geoms which can draw a legend entry for
// one level of a discrete color scale.
type legendKeyer interface {
	Key(p *Plot, c color.Color) plot.Thumbnailer
}

// makeColorFunc returns the color of row i for aes. A value fixed in the
// geom wins over mapped data which wins over the default in style.
// The function yields nil for levels which are not drawn.
func makeColorFunc(aes string, data *DataFrame, p *Plot, style, fixed AesMapping) func(i int) color.Color {
	if v, ok := fixed[aes]; ok {
		c := String2Color(v)
		return func(int) color.Color { return c }
	}
	if f, ok := data.Columns[aes]; ok {
		if scale, ok := p.Scales[aes]; ok {
			return func(i int) color.Color { return scale.Color(f, f.Data[i]) }
		}
	}
	c := String2Color(style[aes])
	return func(int) color.Color { return c }
}

// makePosFunc is the numeric counterpart of makeColorFunc. Values are
// clamped to [low, high].
func makePosFunc(aes string, data *DataFrame, style, fixed AesMapping, low, high float64) func(i int) float64 {
	if v, ok := fixed[aes]; ok {
		x := String2Float(v, low, high)
		return func(int) float64 { return x }
	}
	if f, ok := data.Columns[aes]; ok && !f.Discrete() {
		return func(i int) float64 { return math.Max(low, math.Min(high, f.Data[i])) }
	}
	x := String2Float(style[aes], low, high)
	return func(int) float64 { return x }
}

// makeStyleFunc handles enumerations like shape and linetype. Mapped
// discrete data cycles through the values starting at 1.
func makeStyleFunc(aes string, data *DataFrame, style, fixed AesMapping, parse func(string) int) func(i int) int {
	if v, ok := fixed[aes]; ok {
		x := parse(v)
		return func(int) int { return x }
	}
	if f, ok := data.Columns[aes]; ok {
		levels := indexOf(levelNames(f))
		return func(i int) int { return parse(strconv.Itoa(levels[f.String(f.Data[i])] + 1)) }
	}
	x := parse(style[aes])
	return func(int) int { return x }
}

// fillAes returns the aesthetic the fill color of a geom is taken from:
// mapped color data stands in for an unmapped fill.
func fillAes(data *DataFrame, fixed AesMapping) (string, AesMapping) {
	if _, ok := fixed["fill"]; ok || data.Has("fill") || !data.Has("color") {
		return "fill", fixed
	}
	return "color", nil
}

// posOf maps row i of field f through scale s.
func posOf(s *Scale, f Field, i int) (float64, bool) {
	x := f.Data[i]
	if s == nil {
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	}
	return s.Pos(f, x)
}

// slotter places the rows of a data frame inside the slots of the x
// scale, optionally dodged by the levels of the fill or color scale.
type slotter struct {
	x      Field
	xscale *Scale
	width  float64
	hue    Field
	hscale *Scale
}

func newSlotter(p *Plot, data *DataFrame, dodge bool) slotter {
	s := slotter{
		x:      data.Columns["x"],
		xscale: p.Scales["x"],
		width:  p.Theme.slotWidth(),
	}
	if s.xscale == nil || !s.xscale.Discrete {
		s.width *= resolution(s.x)
	}
	if !dodge {
		return s
	}
	for _, a := range []string{"fill", "color"} {
		if hs, ok := p.Scales[a]; ok && hs.Discrete && data.Has(a) {
			s.hue, s.hscale = data.Columns[a], hs
			break
		}
	}
	return s
}

// at returns center and width of row i. ok is false for rows of levels
// which are not drawn.
func (s slotter) at(i int) (center, width float64, ok bool) {
	center, ok = s.center(i)
	if !ok {
		return 0, 0, false
	}
	if s.hscale == nil {
		return center, s.width, true
	}
	return s.dodge(center, s.hue.String(s.hue.Data[i]))
}

func (s slotter) center(i int) (float64, bool) {
	return posOf(s.xscale, s.x, i)
}

func (s slotter) dodge(center float64, level string) (float64, float64, bool) {
	if s.hscale == nil {
		return center, s.width, true
	}
	idx, ok := s.hscale.Index(level)
	if !ok {
		return 0, 0, false
	}
	off, w := geom.Dodge(len(s.hscale.Levels()), idx, s.width)
	return center + off, w, true
}

// orTransparent replaces a nil color.
func orTransparent(c color.Color) color.Color {
	if c == nil {
		return color.Transparent
	}
	return c
}

func polygonKey(fill, edge color.Color, width vg.Length) plot.Thumbnailer {
	poly := &plotter.Polygon{Color: fill}
	poly.LineStyle = draw.LineStyle{Color: orTransparent(edge), Width: width}
	return poly
}

// keyList draws several thumbnails on top of each other.
type keyList []plot.Thumbnailer

func (k keyList) Thumbnail(c *draw.Canvas) {
	for _, t := range k {
		t.Thumbnail(c)
	}
}

// -------------------------------------------------------------------------
// Geom Point

type GeomPoint struct {
	Position PositionAdjust
	Style    AesMapping // The individal fixed, aka non-mapped aesthetics

	// Jitter is the maximal random displacement for PosJitter and
	// PosJitterDodge as a fraction of the full slot, default 0.1.
	Jitter float64
}

var _ Geom = GeomPoint{}

func (g GeomPoint) Name() string          { return "GeomPoint" }
func (g GeomPoint) NeededSlots() []string { return []string{"x", "y"} }
func (g GeomPoint) OptionalSlots() []string {
	return []string{"color", "fill", "size", "shape", "alpha", "linewidth"}
}

func (g GeomPoint) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.PointStyle, DefaultTheme.PointStyle)
}

func (g GeomPoint) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, g.Position.dodged())
	ys, y := p.Scales["y"], data.Columns["y"]

	fa, ffixed := fillAes(data, g.Style)
	fillFunc := makeColorFunc(fa, data, p, style, ffixed)
	edgeFunc := makeColorFunc("color", data, p, style, g.Style)
	sizeFunc := makePosFunc("size", data, style, g.Style, 0, 50)
	alphaFunc := makePosFunc("alpha", data, style, g.Style, 0, 1)
	lwFunc := makePosFunc("linewidth", data, style, g.Style, 0, 10)
	shapeFunc := makeStyleFunc("shape", data, style, g.Style,
		func(s string) int { return int(String2PointShape(s)) })

	var rng *rand.Rand
	if g.Position == PosJitter || g.Position == PosJitterDodge {
		rng = rand.New(rand.NewSource(p.Seed))
	}
	jitter := g.Jitter
	if jitter <= 0 {
		jitter = 0.1
	}

	grob := &GrobPoints{Swarm: g.Position == PosSwarm, Warnf: p.Warnf}
	groups := make(map[float64]int)
	for i := 0; i < data.N; i++ {
		x, w, ok := slots.at(i)
		if !ok {
			continue
		}
		yy, ok := posOf(ys, y, i)
		if !ok {
			continue
		}
		fill := fillFunc(i)
		if fill == nil {
			continue
		}
		if rng != nil {
			x += geom.Jitter(rng, 1, jitter*w/p.Theme.slotWidth())[0]
		}
		gid, ok := groups[x]
		if !ok {
			gid = len(groups)
			groups[x] = gid
		}
		alpha := alphaFunc(i)
		grob.Points = append(grob.Points, GrobPoint{
			X:         x,
			Y:         yy,
			Group:     gid,
			Width:     w,
			Radius:    vg.Points(sizeFunc(i)) / 2,
			Shape:     PointShape(shapeFunc(i)),
			Fill:      SetAlpha(fill, alpha),
			Edge:      SetAlpha(edgeFunc(i), alpha),
			EdgeWidth: vg.Points(lwFunc(i)),
		})
	}
	if len(grob.Points) == 0 {
		return nil
	}
	return []plot.Plotter{grob}
}

func (g GeomPoint) Key(p *Plot, c color.Color) plot.Thumbnailer {
	style := g.Aes(p)
	edge := c
	if v, ok := g.Style["color"]; ok {
		edge = String2Color(v)
	}
	return &GrobPoints{Points: []GrobPoint{{
		Radius:    vg.Points(String2Float(style["size"], 0, 50)) / 2,
		Shape:     String2PointShape(style["shape"]),
		Fill:      c,
		Edge:      edge,
		EdgeWidth: vg.Points(String2Float(style["linewidth"], 0, 10)),
	}}}
}

// -------------------------------------------------------------------------
// Geom Line

type GeomLine struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics

	// Markers draws a circle at each vertex.
	Markers bool
}

var _ Geom = GeomLine{}

func (g GeomLine) Name() string          { return "GeomLine" }
func (g GeomLine) NeededSlots() []string { return []string{"x", "y"} }
func (g GeomLine) OptionalSlots() []string {
	return []string{"color", "size", "linetype", "alpha", "group"}
}

func (g GeomLine) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.LineStyle, DefaultTheme.LineStyle)
}

// partitionBy splits data by the first of the given fields present.
func partitionBy(data *DataFrame, fields ...string) []*DataFrame {
	for _, f := range fields {
		if data.Has(f) {
			return Partition(data, f, Levels(data, f).Elements())
		}
	}
	return []*DataFrame{data}
}

func (g GeomLine) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	xs, ys := p.Scales["x"], p.Scales["y"]
	var plotters []plot.Plotter
	for _, part := range partitionBy(data, "group", "color") {
		if part.N == 0 {
			continue
		}
		col := makeColorFunc("color", part, p, style, g.Style)(0)
		if col == nil {
			continue
		}
		col = SetAlpha(col, makePosFunc("alpha", part, style, g.Style, 0, 1)(0))
		width := vg.Points(makePosFunc("size", part, style, g.Style, 0, 20)(0))
		lt := LineType(makeStyleFunc("linetype", part, style, g.Style,
			func(s string) int { return int(String2LineType(s)) })(0))

		x, y := part.Columns["x"], part.Columns["y"]
		xys := make(plotter.XYs, 0, part.N)
		for i := 0; i < part.N; i++ {
			px, okx := posOf(xs, x, i)
			py, oky := posOf(ys, y, i)
			if okx && oky {
				xys = append(xys, plotter.XY{X: px, Y: py})
			}
		}
		if len(xys) == 0 {
			continue
		}
		sort.SliceStable(xys, func(a, b int) bool { return xys[a].X < xys[b].X })

		if lt != BlankLine {
			line, err := plotter.NewLine(xys)
			if err != nil {
				p.Warnf("GeomLine: %s", err)
				continue
			}
			line.LineStyle = draw.LineStyle{Color: col, Width: width, Dashes: lt.Dashes(width)}
			plotters = append(plotters, line)
		}
		if g.Markers {
			scatter, err := plotter.NewScatter(xys)
			if err != nil {
				p.Warnf("GeomLine: %s", err)
				continue
			}
			scatter.GlyphStyle = g.marker(style, col)
			plotters = append(plotters, scatter)
		}
	}
	return plotters
}

func (g GeomLine) marker(style AesMapping, c color.Color) draw.GlyphStyle {
	return draw.GlyphStyle{
		Color:  c,
		Radius: vg.Points(String2Float(style["markersize"], 0, 50)) / 2,
		Shape:  draw.CircleGlyph{},
	}
}

func (g GeomLine) Key(p *Plot, c color.Color) plot.Thumbnailer {
	style := g.Aes(p)
	width := vg.Points(String2Float(style["size"], 0, 20))
	key := keyList{&plotter.Line{LineStyle: draw.LineStyle{
		Color:  c,
		Width:  width,
		Dashes: String2LineType(style["linetype"]).Dashes(width),
	}}}
	if g.Markers {
		key = append(key, &plotter.Scatter{GlyphStyle: g.marker(style, c)})
	}
	return key
}

// -------------------------------------------------------------------------
// Geom Ribbon

// GeomRibbon fills the band between ymin and ymax.
type GeomRibbon struct {
	Style AesMapping
}

var _ Geom = GeomRibbon{}

func (g GeomRibbon) Name() string            { return "GeomRibbon" }
func (g GeomRibbon) NeededSlots() []string   { return []string{"x", "ymin", "ymax"} }
func (g GeomRibbon) OptionalSlots() []string { return []string{"color", "fill", "alpha", "group"} }

func (g GeomRibbon) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, AesMapping{"alpha": "0.2"}, p.Theme.LineStyle, DefaultTheme.LineStyle)
}

func (g GeomRibbon) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	xs, ys := p.Scales["x"], p.Scales["y"]
	var plotters []plot.Plotter
	for _, part := range partitionBy(data, "group", "fill", "color") {
		if part.N == 0 {
			continue
		}
		fa, ffixed := fillAes(part, g.Style)
		fill := makeColorFunc(fa, part, p, style, ffixed)(0)
		if fill == nil {
			continue
		}

		type band struct{ x, lo, hi float64 }
		x, lo, hi := part.Columns["x"], part.Columns["ymin"], part.Columns["ymax"]
		var bands []band
		for i := 0; i < part.N; i++ {
			px, okx := posOf(xs, x, i)
			plo, oklo := posOf(ys, lo, i)
			phi, okhi := posOf(ys, hi, i)
			if okx && oklo && okhi {
				bands = append(bands, band{px, plo, phi})
			}
		}
		if len(bands) < 2 {
			continue
		}
		sort.SliceStable(bands, func(a, b int) bool { return bands[a].x < bands[b].x })
		xys := make(plotter.XYs, 0, 2*len(bands))
		for _, b := range bands {
			xys = append(xys, plotter.XY{X: b.x, Y: b.hi})
		}
		for j := len(bands) - 1; j >= 0; j-- {
			xys = append(xys, plotter.XY{X: bands[j].x, Y: bands[j].lo})
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			p.Warnf("GeomRibbon: %s", err)
			continue
		}
		poly.Color = SetAlpha(fill, makePosFunc("alpha", part, style, g.Style, 0, 1)(0))
		poly.LineStyle.Width = 0
		plotters = append(plotters, poly)
	}
	return plotters
}

// -------------------------------------------------------------------------
// Geom Bar

// GeomBar draws bars from 0 to y.
type GeomBar struct {
	Position PositionAdjust
	Style    AesMapping
}

var _ Geom = GeomBar{}

func (g GeomBar) Name() string          { return "GeomBar" }
func (g GeomBar) NeededSlots() []string { return []string{"x", "y"} }
func (g GeomBar) OptionalSlots() []string {
	return []string{"color", "fill", "size", "alpha", "saturation"}
}

func (g GeomBar) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.BarStyle, DefaultTheme.BarStyle)
}

func (g GeomBar) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, g.Position.dodged())
	ys, y := p.Scales["y"], data.Columns["y"]
	fa, ffixed := fillAes(data, g.Style)
	fillFunc := makeColorFunc(fa, data, p, style, ffixed)
	edgeFunc := makeColorFunc("color", data, p, style, g.Style)
	alphaFunc := makePosFunc("alpha", data, style, g.Style, 0, 1)
	sizeFunc := makePosFunc("size", data, style, g.Style, 0, 20)
	satFunc := makePosFunc("saturation", data, style, g.Style, 0, 1)

	var plotters []plot.Plotter
	for i := 0; i < data.N; i++ {
		x, w, ok := slots.at(i)
		if !ok {
			continue
		}
		yy, ok := posOf(ys, y, i)
		fill := fillFunc(i)
		if !ok || fill == nil {
			continue
		}
		box := geom.BarBox(x, yy, w)
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: box.XMin, Y: box.YMin}, {X: box.XMax, Y: box.YMin},
			{X: box.XMax, Y: box.YMax}, {X: box.XMin, Y: box.YMax},
		})
		if err != nil {
			p.Warnf("GeomBar: %s", err)
			continue
		}
		poly.Color = SetAlpha(Desaturate(fill, satFunc(i)), alphaFunc(i))
		poly.LineStyle = draw.LineStyle{
			Color: orTransparent(edgeFunc(i)),
			Width: vg.Points(sizeFunc(i)),
		}
		plotters = append(plotters, poly)
	}
	return plotters
}

func (g GeomBar) Key(p *Plot, c color.Color) plot.Thumbnailer {
	style := g.Aes(p)
	fill := Desaturate(c, String2Float(style["saturation"], 0, 1))
	return polygonKey(SetAlpha(fill, String2Float(style["alpha"], 0, 1)),
		String2Color(style["color"]), vg.Points(String2Float(style["size"], 0, 20)))
}

// -------------------------------------------------------------------------
// Geom ErrorBar

// GeomErrorBar draws vertical error bars from ymin to ymax with caps.
type GeomErrorBar struct {
	Position PositionAdjust
	Style    AesMapping
}

var _ Geom = GeomErrorBar{}

func (g GeomErrorBar) Name() string            { return "GeomErrorBar" }
func (g GeomErrorBar) NeededSlots() []string   { return []string{"x", "ymin", "ymax"} }
func (g GeomErrorBar) OptionalSlots() []string { return []string{"y", "color", "size", "alpha", "capwidth"} }

func (g GeomErrorBar) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, AesMapping{"size": "0.75", "capwidth": "6"},
		p.Theme.LineStyle, DefaultTheme.LineStyle)
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (g GeomErrorBar) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, g.Position.dodged())
	ys := p.Scales["y"]
	lo, hi := data.Columns["ymin"], data.Columns["ymax"]
	mid, hasMid := data.Columns["y"]
	colFunc := makeColorFunc("color", data, p, style, g.Style)
	alphaFunc := makePosFunc("alpha", data, style, g.Style, 0, 1)

	// One plotter per color, in order of first appearance.
	var order []color.Color
	byColor := make(map[color.Color]*errorPoints)
	for i := 0; i < data.N; i++ {
		x, _, ok := slots.at(i)
		if !ok {
			continue
		}
		ylo, oklo := posOf(ys, lo, i)
		yhi, okhi := posOf(ys, hi, i)
		if !oklo || !okhi {
			continue
		}
		yy := (ylo + yhi) / 2
		if hasMid {
			if v, ok := posOf(ys, mid, i); ok {
				yy = v
			}
		}
		col := colFunc(i)
		if col == nil {
			continue
		}
		col = SetAlpha(col, alphaFunc(i))
		pts, ok := byColor[col]
		if !ok {
			pts = &errorPoints{}
			byColor[col] = pts
			order = append(order, col)
		}
		pts.XYs = append(pts.XYs, plotter.XY{X: x, Y: yy})
		pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{yy - ylo, yhi - yy})
	}

	width := vg.Points(String2Float(style["size"], 0, 20))
	capWidth := vg.Points(String2Float(style["capwidth"], 0, 100))
	var plotters []plot.Plotter
	for _, col := range order {
		bars, err := plotter.NewYErrorBars(byColor[col])
		if err != nil {
			p.Warnf("GeomErrorBar: %s", err)
			continue
		}
		bars.LineStyle = draw.LineStyle{Color: col, Width: width}
		bars.CapWidth = capWidth
		plotters = append(plotters, bars)
	}
	return plotters
}

// -------------------------------------------------------------------------
// Geom Violin

// GeomViolin draws the mirrored density of y, scaled to the slot width.
// Rows with equal x and fill form one violin.
type GeomViolin struct {
	Position PositionAdjust
	Style    AesMapping
}

var _ Geom = GeomViolin{}

func (g GeomViolin) Name() string            { return "GeomViolin" }
func (g GeomViolin) NeededSlots() []string   { return []string{"x", "y", "density"} }
func (g GeomViolin) OptionalSlots() []string { return []string{"color", "fill", "alpha", "size"} }

func (g GeomViolin) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.BarStyle, DefaultTheme.BarStyle)
}

// groupRows returns the row indices of data grouped by the values of
// fields, groups in order of first appearance.
func groupRows(data *DataFrame, fields ...string) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for i := 0; i < data.N; i++ {
		key := ""
		for _, f := range fields {
			if col, ok := data.Columns[f]; ok {
				key += fmt.Sprintf("%v|", col.Data[i])
			}
		}
		j, ok := index[key]
		if !ok {
			j = len(groups)
			index[key] = j
			groups = append(groups, nil)
		}
		groups[j] = append(groups[j], i)
	}
	return groups
}

func (g GeomViolin) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, g.Position.dodged())
	ys, y, dens := p.Scales["y"], data.Columns["y"], data.Columns["density"]
	fa, ffixed := fillAes(data, g.Style)
	fillFunc := makeColorFunc(fa, data, p, style, ffixed)
	edgeFunc := makeColorFunc("color", data, p, style, g.Style)
	alphaFunc := makePosFunc("alpha", data, style, g.Style, 0, 1)
	sizeFunc := makePosFunc("size", data, style, g.Style, 0, 20)
	satFunc := makePosFunc("saturation", data, style, g.Style, 0, 1)

	var plotters []plot.Plotter
	for _, rows := range groupRows(data, "x", "fill", "color") {
		first := rows[0]
		center, w, ok := slots.at(first)
		fill := fillFunc(first)
		if !ok || fill == nil {
			continue
		}
		half := w / 2
		type pt struct{ y, d float64 }
		var pts []pt
		for _, i := range rows {
			if yy, ok := posOf(ys, y, i); ok && !math.IsNaN(dens.Data[i]) {
				pts = append(pts, pt{yy, dens.Data[i]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].y < pts[b].y })
		xys := make(plotter.XYs, 0, 2*len(pts))
		for _, q := range pts {
			xys = append(xys, plotter.XY{X: center + q.d*half, Y: q.y})
		}
		for j := len(pts) - 1; j >= 0; j-- {
			xys = append(xys, plotter.XY{X: center - pts[j].d*half, Y: pts[j].y})
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			p.Warnf("GeomViolin: %s", err)
			continue
		}
		poly.Color = SetAlpha(Desaturate(fill, satFunc(first)), alphaFunc(first))
		poly.LineStyle = draw.LineStyle{
			Color: orTransparent(edgeFunc(first)),
			Width: vg.Points(sizeFunc(first)),
		}
		plotters = append(plotters, poly)
	}
	return plotters
}

func (g GeomViolin) Key(p *Plot, c color.Color) plot.Thumbnailer {
	style := g.Aes(p)
	return polygonKey(SetAlpha(c, String2Float(style["alpha"], 0, 1)),
		String2Color(style["color"]), vg.Points(String2Float(style["size"], 0, 20)))
}

// -------------------------------------------------------------------------
// Geom Boxplot

// GeomBoxplot draws a narrow box from q1 to q3, a whisker line from low
// to high and a white dot at the median. It fits inside a violin.
type GeomBoxplot struct {
	Position PositionAdjust
	Style    AesMapping
}

var _ Geom = GeomBoxplot{}

func (g GeomBoxplot) Name() string { return "GeomBoxplot" }
func (g GeomBoxplot) NeededSlots() []string {
	return []string{"x", "low", "q1", "mid", "q3", "high"}
}
func (g GeomBoxplot) OptionalSlots() []string { return []string{"fill", "color"} }

func (g GeomBoxplot) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.RectStyle, DefaultTheme.RectStyle)
}

func (g GeomBoxplot) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, g.Position.dodged())
	ys := p.Scales["y"]
	fa, ffixed := fillAes(data, g.Style)
	fillFunc := makeColorFunc(fa, data, p, style, ffixed)
	frac := String2Float(style["width"], 0, 1)
	lw := vg.Points(String2Float(style["size"], 0, 20))

	var plotters []plot.Plotter
	for i := 0; i < data.N; i++ {
		center, w, ok := slots.at(i)
		fill := fillFunc(i)
		if !ok || fill == nil {
			continue
		}
		var v [5]float64
		valid := true
		for j, name := range []string{"low", "q1", "mid", "q3", "high"} {
			v[j], ok = posOf(ys, data.Columns[name], i)
			valid = valid && ok
		}
		if !valid {
			continue
		}
		low, q1, mid, q3, high := v[0], v[1], v[2], v[3], v[4]

		whisker, err := plotter.NewLine(plotter.XYs{{X: center, Y: low}, {X: center, Y: high}})
		if err != nil {
			p.Warnf("GeomBoxplot: %s", err)
			continue
		}
		whisker.LineStyle = draw.LineStyle{Color: fill, Width: lw}
		plotters = append(plotters, whisker)

		half := frac * w / 2
		box, err := plotter.NewPolygon(plotter.XYs{
			{X: center - half, Y: q1}, {X: center + half, Y: q1},
			{X: center + half, Y: q3}, {X: center - half, Y: q3},
		})
		if err == nil {
			box.Color = fill
			box.LineStyle.Width = 0
			plotters = append(plotters, box)
		}

		median, err := plotter.NewScatter(plotter.XYs{{X: center, Y: mid}})
		if err == nil {
			median.GlyphStyle = draw.GlyphStyle{
				Color:  color.White,
				Radius: 1.5 * lw,
				Shape:  draw.CircleGlyph{},
			}
			plotters = append(plotters, median)
		}
	}
	return plotters
}

// -------------------------------------------------------------------------
// Geom Tile

// GeomTile draws a heat map of fill over the discrete x and y scales.
// The fill scale must be continuous with a ColorMap. Cells below the
// color map's minimum get the color in the style's "underflow" or the
// lowest color of the map.
type GeomTile struct {
	Style AesMapping
}

var _ Geom = GeomTile{}

func (g GeomTile) Name() string            { return "GeomTile" }
func (g GeomTile) NeededSlots() []string   { return []string{"x", "y", "fill"} }
func (g GeomTile) OptionalSlots() []string { return nil }

func (g GeomTile) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.TileStyle, DefaultTheme.TileStyle)
}

// tileGrid implements plotter.GridXYZ with cell (c, r) at position (c, r).
type tileGrid struct {
	cols, rows int
	z          [][]float64 // z[r][c]
}

func newTileGrid(cols, rows int) *tileGrid {
	g := &tileGrid{cols: cols, rows: rows, z: make([][]float64, rows)}
	for r := range g.z {
		g.z[r] = make([]float64, cols)
		for c := range g.z[r] {
			g.z[r][c] = math.NaN()
		}
	}
	return g
}

func (g *tileGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *tileGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *tileGrid) X(c int) float64    { return float64(c) }
func (g *tileGrid) Y(r int) float64    { return float64(r) }

func (g GeomTile) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	xs, ys, fs := p.Scales["x"], p.Scales["y"], p.Scales["fill"]
	if xs == nil || ys == nil || !xs.Discrete || !ys.Discrete {
		p.Warnf("GeomTile needs discrete x and y scales")
		return nil
	}
	if fs == nil || fs.Discrete || fs.ColorMap == nil {
		p.Warnf("GeomTile needs a continuous fill scale with a color map")
		return nil
	}
	cols, rows := len(xs.Levels()), len(ys.Levels())
	if cols == 0 || rows == 0 {
		return nil
	}

	grid := newTileGrid(cols, rows)
	x, y, fill := data.Columns["x"], data.Columns["y"], data.Columns["fill"]
	for i := 0; i < data.N; i++ {
		c, okx := xs.Pos(x, x.Data[i])
		r, oky := ys.Pos(y, y.Data[i])
		if okx && oky {
			grid.z[int(r)][int(c)] = fill.Data[i]
		}
	}

	cm := fs.ColorMap
	pal := cm.Palette(256)
	colors := pal.Colors()
	heat := plotter.NewHeatMap(grid, pal)
	heat.Min, heat.Max = cm.Min(), cm.Max()
	heat.Underflow = colors[0]
	if u := style["underflow"]; u != "" {
		heat.Underflow = String2Color(u)
	}
	heat.Overflow = colors[len(colors)-1]
	heat.NaN = nil
	plotters := []plot.Plotter{heat}

	lw := vg.Points(String2Float(style["size"], 0, 10))
	if lw == 0 {
		return plotters
	}
	ls := draw.LineStyle{Color: String2Color(style["color"]), Width: lw}
	for c := 0; c <= cols; c++ {
		xx := float64(c) - 0.5
		if line, err := plotter.NewLine(plotter.XYs{{X: xx, Y: -0.5}, {X: xx, Y: float64(rows) - 0.5}}); err == nil {
			line.LineStyle = ls
			plotters = append(plotters, line)
		}
	}
	for r := 0; r <= rows; r++ {
		yy := float64(r) - 0.5
		if line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: yy}, {X: float64(cols) - 0.5, Y: yy}}); err == nil {
			line.LineStyle = ls
			plotters = append(plotters, line)
		}
	}
	return plotters
}

// -------------------------------------------------------------------------
// Geom Bracket

// GeomBracket draws significance brackets between two dodged fill levels
// of the same x category with the label on top. With "loc" "inside" a
// bracket sits just above the data of its two groups, with "outside"
// all brackets start above the top of the data. Overlapping brackets are
// stacked.
type GeomBracket struct {
	Style AesMapping
}

var _ Geom = GeomBracket{}

func (g GeomBracket) Name() string { return "GeomBracket" }
func (g GeomBracket) NeededSlots() []string {
	return []string{"x", "fill1", "fill2", "label", "ymax", "top", "bottom"}
}
func (g GeomBracket) OptionalSlots() []string { return nil }

func (g GeomBracket) Aes(p *Plot) AesMapping {
	return MergeStyles(g.Style, p.Theme.BracketStyle, DefaultTheme.BracketStyle)
}

func (g GeomBracket) Render(p *Plot, data *DataFrame, style AesMapping) []plot.Plotter {
	slots := newSlotter(p, data, false)
	slots.hscale = p.Scales["fill"]
	if slots.hscale == nil || !slots.hscale.Discrete {
		p.Warnf("GeomBracket needs a discrete fill scale")
		return nil
	}

	offset := String2Float(style["offset"], 0, 1)
	tip := String2Float(style["tip"], 0, 1)
	outside := style["loc"] == "outside"
	col := String2Color(style["color"])
	lw := vg.Points(String2Float(style["size"], 0, 10))

	top, bottom := data.Columns["top"].Data[0], data.Columns["bottom"].Data[0]
	span := top - math.Min(bottom, 0)
	if span <= 0 || math.IsNaN(span) {
		span = 1
	}
	step := offset * span

	fill1, fill2 := data.Columns["fill1"], data.Columns["fill2"]
	label, ymax := data.Columns["label"], data.Columns["ymax"]

	type bracket struct{ x1, x2, y float64 }
	var done []bracket
	var plotters []plot.Plotter
	var anchors plotter.XYs
	var labels []string
	for i := 0; i < data.N; i++ {
		center, ok := slots.center(i)
		if !ok {
			continue
		}
		x1, _, ok1 := slots.dodge(center, fill1.String(fill1.Data[i]))
		x2, _, ok2 := slots.dodge(center, fill2.String(fill2.Data[i]))
		if !ok1 || !ok2 {
			continue
		}
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		base := ymax.Data[i]
		if outside || math.IsNaN(base) {
			base = top
		}
		y := base + step
		for moved := true; moved; {
			moved = false
			for _, b := range done {
				if b.x1 <= x2 && x1 <= b.x2 && y < b.y+2*step {
					y = b.y + 2*step
					moved = true
				}
			}
		}
		done = append(done, bracket{x1, x2, y})

		pts := plotter.XYs{{X: x1, Y: y}, {X: x2, Y: y}}
		if tip > 0 {
			d := tip * span
			pts = plotter.XYs{{X: x1, Y: y - d}, {X: x1, Y: y}, {X: x2, Y: y}, {X: x2, Y: y - d}}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			p.Warnf("GeomBracket: %s", err)
			continue
		}
		line.LineStyle = draw.LineStyle{Color: col, Width: lw}
		plotters = append(plotters, line)
		anchors = append(anchors, plotter.XY{X: (x1 + x2) / 2, Y: y})
		labels = append(labels, label.String(label.Data[i]))
	}
	if len(labels) == 0 {
		return plotters
	}

	texts, err := plotter.NewLabels(plotter.XYLabels{XYs: anchors, Labels: labels})
	if err != nil {
		p.Warnf("GeomBracket: %s", err)
		return plotters
	}
	for i := range texts.TextStyle {
		texts.TextStyle[i].XAlign = text.XCenter
		texts.TextStyle[i].YAlign = text.YBottom
		texts.TextStyle[i].Font.Size = p.Theme.fontSize()
		texts.TextStyle[i].Color = col
	}
	texts.Offset = vg.Point{Y: vg.Points(1)}
	return append(plotters, texts)
}
