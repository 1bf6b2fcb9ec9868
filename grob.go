package qplot

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/vdobler/qplot/geom"
)

// GrobPoint is a single point marker in data coordinates.
type GrobPoint struct {
	X, Y float64

	// Group and Width identify the slot of the point for swarm layout:
	// points of the same group are spread over at most Width data units.
	Group int
	Width float64

	Radius    vg.Length
	Shape     PointShape
	Fill      color.Color
	Edge      color.Color
	EdgeWidth vg.Length
}

// GrobPoints draws point markers. It implements plot.Plotter,
// plot.DataRanger, plot.GlyphBoxer and plot.Thumbnailer.
type GrobPoints struct {
	Points []GrobPoint

	// Swarm spreads the points of each group horizontally so that they
	// do not overlap. Layout happens in canvas units while drawing.
	Swarm bool

	// Warnf, if set, is told about groups which had to be squeezed.
	Warnf func(format string, args ...interface{})
}

var (
	_ plot.Plotter     = (*GrobPoints)(nil)
	_ plot.DataRanger  = (*GrobPoints)(nil)
	_ plot.GlyphBoxer  = (*GrobPoints)(nil)
	_ plot.Thumbnailer = (*GrobPoints)(nil)
)

func (g *GrobPoints) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pts := make([]vg.Point, len(g.Points))
	for i, p := range g.Points {
		pts[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
	}
	if g.Swarm {
		g.swarm(pts, trX)
	}
	for i, p := range g.Points {
		drawPoint(&c, pts[i], p)
	}
}

func (g *GrobPoints) swarm(pts []vg.Point, trX func(float64) vg.Length) {
	groups := make(map[int][]int)
	for i, p := range g.Points {
		groups[p.Group] = append(groups[p.Group], i)
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		idx := groups[id]
		first := g.Points[idx[0]]
		diameter := 2*first.Radius + first.EdgeWidth
		ys := make([]float64, len(idx))
		for j, i := range idx {
			ys[j] = float64(pts[i].Y)
		}
		offsets := geom.Swarm(ys, float64(diameter))
		width := float64(trX(first.X+first.Width/2) - trX(first.X-first.Width/2))
		if geom.Squeeze(offsets, width) && g.Warnf != nil {
			g.Warnf("%d points at x=%g do not fit into their slot and overlap", len(idx), first.X)
		}
		for j, i := range idx {
			pts[i].X += vg.Length(offsets[j])
		}
	}
}

func (g *GrobPoints) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, p := range g.Points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	return xmin, xmax, ymin, ymax
}

func (g *GrobPoints) GlyphBoxes(plt *plot.Plot) []plot.GlyphBox {
	boxes := make([]plot.GlyphBox, len(g.Points))
	for i, p := range g.Points {
		r := p.Radius + p.EdgeWidth/2
		boxes[i].X = plt.X.Norm(p.X)
		boxes[i].Y = plt.Y.Norm(p.Y)
		boxes[i].Rectangle = vg.Rectangle{
			Min: vg.Point{X: -r, Y: -r},
			Max: vg.Point{X: r, Y: r},
		}
	}
	return boxes
}

// Thumbnail draws the first point centered in c.
func (g *GrobPoints) Thumbnail(c *draw.Canvas) {
	if len(g.Points) == 0 {
		return
	}
	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	drawPoint(c, center, g.Points[0])
}

// drawPoint draws p at pt. Solid shapes are filled with Fill (or Edge
// if Fill is nil) and outlined with Edge, open shapes are only outlined.
func drawPoint(c *draw.Canvas, pt vg.Point, p GrobPoint) {
	if p.Shape == BlankPoint || p.Radius <= 0 {
		return
	}
	r := p.Radius
	var path vg.Path
	open := false
	switch p.Shape {
	case CirclePoint, SolidCirclePoint:
		path.Move(vg.Point{X: pt.X + r, Y: pt.Y})
		path.Arc(pt, r, 0, 2*math.Pi)
		path.Close()
	case SquarePoint, SolidSquarePoint:
		polygonPath(&path, pt, r, 4, math.Pi/4)
	case DiamondPoint, SolidDiamondPoint:
		polygonPath(&path, pt, r, 4, 0)
	case DeltaPoint, SolidDeltaPoint:
		polygonPath(&path, pt, r, 3, math.Pi/2)
	case NablaPoint, SolidNablaPoint:
		polygonPath(&path, pt, r, 3, -math.Pi/2)
	case CrossPoint:
		starPath(&path, pt, r, 2, math.Pi/4)
		open = true
	case PlusPoint:
		starPath(&path, pt, r, 2, 0)
		open = true
	case StarPoint:
		starPath(&path, pt, r, 3, math.Pi/2)
		open = true
	}

	if p.Shape.Solid() {
		fill := p.Fill
		if fill == nil {
			fill = p.Edge
		}
		if fill != nil {
			c.SetColor(fill)
			c.Fill(path)
		}
	}
	edge, width := p.Edge, p.EdgeWidth
	if edge == nil && !p.Shape.Solid() {
		edge = p.Fill
	}
	if (open || !p.Shape.Solid()) && width <= 0 {
		width = vg.Points(1)
	}
	if edge == nil || width <= 0 {
		return
	}
	c.SetLineWidth(width)
	c.SetLineDash(nil, 0)
	c.SetColor(edge)
	c.Stroke(path)
}

// polygonPath adds a regular polygon with n corners on the circle of
// radius r around center to path.
func polygonPath(path *vg.Path, center vg.Point, r vg.Length, n int, phase float64) {
	for i := 0; i < n; i++ {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		pt := vg.Point{
			X: center.X + r*vg.Length(math.Cos(a)),
			Y: center.Y + r*vg.Length(math.Sin(a)),
		}
		if i == 0 {
			path.Move(pt)
		} else {
			path.Line(pt)
		}
	}
	path.Close()
}

// starPath adds n strokes through center to path.
func starPath(path *vg.Path, center vg.Point, r vg.Length, n int, phase float64) {
	for i := 0; i < n; i++ {
		a := phase + math.Pi*float64(i)/float64(n)
		dx, dy := r*vg.Length(math.Cos(a)), r*vg.Length(math.Sin(a))
		path.Move(vg.Point{X: center.X - dx, Y: center.Y - dy})
		path.Line(vg.Point{X: center.X + dx, Y: center.Y + dy})
	}
}
