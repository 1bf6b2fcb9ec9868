package qplot

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Figure is a finished chart: the main plot and an optional color bar
// drawn to its right.
type Figure struct {
	Plot     *plot.Plot
	ColorBar *plot.Plot

	// Width and Height of the image, zero values default to 6x4 inch.
	Width, Height vg.Length

	// DPI of raster formats, default 96.
	DPI int
}

func (f *Figure) size() (vg.Length, vg.Length) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = 6 * vg.Inch
	}
	if h <= 0 {
		h = 4 * vg.Inch
	}
	return w, h
}

func (f *Figure) dpi() int {
	if f.DPI <= 0 {
		return vgimg.DefaultDPI
	}
	return f.DPI
}

// colorBarWidth is the part of the canvas reserved for the color bar
// including its tick labels.
func colorBarWidth(w vg.Length) vg.Length {
	cb := w / 8
	if cb < vg.Inch*0.6 {
		cb = vg.Inch * 0.6
	}
	return cb
}

// Draw draws the figure to c.
func (f *Figure) Draw(c draw.Canvas) {
	if f.ColorBar == nil {
		f.Plot.Draw(c)
		return
	}
	cb := colorBarWidth(c.Max.X - c.Min.X)
	f.Plot.Draw(draw.Crop(c, 0, -cb, 0, 0))
	f.ColorBar.Draw(draw.Crop(c, c.Max.X-c.Min.X-cb, 0, vg.Points(30), -vg.Points(10)))
}

// WriterTo renders the figure in the given format which must be one of
// Formats.
func (f *Figure) WriterTo(format string) (io.WriterTo, error) {
	w, h := f.size()
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(f.dpi()))
		f.Draw(draw.New(img))
		switch format {
		case "png":
			return vgimg.PngCanvas{Canvas: img}, nil
		case "jpg", "jpeg":
			return vgimg.JpegCanvas{Canvas: img}, nil
		default:
			return vgimg.TiffCanvas{Canvas: img}, nil
		}
	}
	var c vg.CanvasWriterTo
	switch format {
	case "svg":
		c = vgsvg.New(w, h)
	case "pdf":
		c = vgpdf.New(w, h)
	case "eps":
		c = vgeps.New(w, h)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	f.Draw(draw.New(c))
	return c, nil
}

// Save writes the figure to path, the format given by its extension.
func (f *Figure) Save(path string) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	wt, err := f.WriterTo(format)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = wt.WriteTo(file)
	return err
}

// NewColorBar returns a plot showing cm as a vertical bar with ticks at
// round values.
func NewColorBar(cm palette.ColorMap, fontSize vg.Length) *plot.Plot {
	cb := plot.New()
	cb.HideX()
	cb.X.Padding, cb.Y.Padding = 0, 0
	cb.Add(colorBands{cm: cm, n: 64})
	cb.Y.Min, cb.Y.Max = cm.Min(), cm.Max()
	cb.Y.Tick.Marker = colorBarTicks{}
	cb.Y.Tick.Label.Font.Size = fontSize
	return cb
}

// colorBands draws a color map as a stack of filled rectangles over x in
// [0, 1]. Unlike plotter.ColorBar it needs no image support, so it works
// on the pdf and eps backends too.
type colorBands struct {
	cm palette.ColorMap
	n  int
}

func (b colorBands) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	x0, x1 := trX(0), trX(1)
	lo, hi := b.cm.Min(), b.cm.Max()
	step := (hi - lo) / float64(b.n)
	for i := 0; i < b.n; i++ {
		v := lo + float64(i)*step
		col, err := b.cm.At(v + step/2)
		if err != nil {
			continue
		}
		// Each band reaches into the next one to avoid hairline seams.
		y0, y1 := trY(v), trY(math.Min(v+1.5*step, hi))
		pts := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
		c.FillPolygon(col, c.ClipPolygonXY(pts))
	}
}

func (b colorBands) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, b.cm.Min(), b.cm.Max()
}

// colorBarTicks puts about five ticks at multiples of a round step.
type colorBarTicks struct{}

func (colorBarTicks) Ticks(min, max float64) []plot.Tick {
	step := NiceStep((max - min) / 5)
	start := RoundUp(min, step)
	var ticks []plot.Tick
	for k := 0; start+float64(k)*step <= max+step*1e-9; k++ {
		v := start + float64(k)*step
		ticks = append(ticks, plot.Tick{Value: v, Label: FormatNumber(v)})
	}
	return ticks
}
