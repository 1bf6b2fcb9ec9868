package qplot

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
)

// LightColorMap is a sequential color map running from a very light
// tint of a color to the color itself.
type LightColorMap struct {
	light, top colorful.Color
	min, max   float64
	alpha      float64
}

var _ palette.ColorMap = (*LightColorMap)(nil)

// NewLightColorMap returns a color map over [0,1] from a tint of top with
// lightness 0.95 up to top.
func NewLightColorMap(top color.Color) *LightColorMap {
	t, ok := colorful.MakeColor(top)
	if !ok {
		t = colorful.Color{}
	}
	h, s, _ := t.Hsl()
	return &LightColorMap{
		light: colorful.Hsl(h, s, 0.95).Clamped(),
		top:   t,
		min:   0,
		max:   1,
		alpha: 1,
	}
}

// At implements palette.ColorMap.
func (m *LightColorMap) At(v float64) (color.Color, error) {
	eps := 1e-9 * (m.max - m.min)
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < m.min-eps:
		return nil, palette.ErrUnderflow
	case v > m.max+eps:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if m.max > m.min {
		t = math.Max(0, math.Min(1, (v-m.min)/(m.max-m.min)))
	}
	r, g, b := m.light.BlendRgb(m.top, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(m.alpha*0xff + 0.5)}, nil
}

func (m *LightColorMap) Max() float64       { return m.max }
func (m *LightColorMap) Min() float64       { return m.min }
func (m *LightColorMap) SetMax(v float64)   { m.max = v }
func (m *LightColorMap) SetMin(v float64)   { m.min = v }
func (m *LightColorMap) Alpha() float64     { return m.alpha }
func (m *LightColorMap) SetAlpha(a float64) { m.alpha = a }

// Palette returns n colors evenly spaced over the map.
func (m *LightColorMap) Palette(n int) palette.Palette {
	colors := make(colorList, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c, _ := m.At(m.min + t*(m.max-m.min))
		colors[i] = c
	}
	return colors
}

type colorList []color.Color

func (cl colorList) Colors() []color.Color { return cl }
