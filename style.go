package qplot

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/vg"
)

// String2Float parses s, which may carry a "%" suffix, and clamps the
// result to [low, high]. Unparsable input yields the midpoint.
func String2Float(s string, low, high float64) float64 {
	factor := 1.0
	if strings.HasSuffix(s, "%") {
		s = s[:len(s)-1]
		factor = 100
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return (low + high) / 2
	}
	value /= factor

	if value < low {
		return low
	} else if value > high {
		return high
	}
	return value
}

// SetAlpha returns c with its alpha replaced by a in [0,1].
func SetAlpha(c color.Color, a float64) color.Color {
	if c == nil {
		return nil
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(a*0xff + 0.5)
	return n
}

// Desaturate scales the HSL saturation of c by s in [0,1] as a way to
// tone down a palette.
func Desaturate(c color.Color, s float64) color.Color {
	if s >= 1 || c == nil {
		return c
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	h, sat, l := cf.Hsl()
	_, _, _, a := c.RGBA()
	return SetAlpha(colorful.Hsl(h, sat*s, l).Clamped(), float64(a)/0xffff)
}

// -------------------------------------------------------------------------
// Points

type PointShape int

const (
	BlankPoint PointShape = iota
	CirclePoint
	SquarePoint
	DiamondPoint
	DeltaPoint
	NablaPoint
	SolidCirclePoint
	SolidSquarePoint
	SolidDiamondPoint
	SolidDeltaPoint
	SolidNablaPoint
	CrossPoint
	PlusPoint
	StarPoint
)

var pointShapeNames = [...]string{
	"blank", "circle", "square", "diamond", "delta", "nabla",
	"solid-circle", "solid-square", "solid-diamond", "solid-delta", "solid-nabla",
	"cross", "plus", "star",
}

func (s PointShape) String() string {
	if s < 0 || int(s) >= len(pointShapeNames) {
		return fmt.Sprintf("PointShape(%d)", int(s))
	}
	return pointShapeNames[s]
}

// String2PointShape parses a shape name or number. Numbers wrap around;
// unknown names are BlankPoint.
func String2PointShape(s string) PointShape {
	return PointShape(lookupName(s, pointShapeNames[:]))
}

// lookupName returns the index of s in names. s may also be a number
// which is taken modulo len(names).
func lookupName(s string, names []string) int {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			n = -n
		}
		return n % len(names)
	}
	for i, name := range names {
		if name == s {
			return i
		}
	}
	return 0
}

// Solid reports whether the shape is drawn filled.
func (s PointShape) Solid() bool {
	return s >= SolidCirclePoint && s <= SolidNablaPoint
}

// -------------------------------------------------------------------------
// Lines

type LineType int

const (
	BlankLine LineType = iota
	SolidLine
	DashedLine
	DottedLine
	DotDashLine
	LongdashLine
	TwodashLine
)

var lineTypeNames = [...]string{
	"blank", "solid", "dashed", "dotted", "dotdash", "longdash", "twodash",
}

func (lt LineType) String() string {
	if lt < 0 || int(lt) >= len(lineTypeNames) {
		return fmt.Sprintf("LineType(%d)", int(lt))
	}
	return lineTypeNames[lt]
}

// String2LineType parses a line type name or number like
// String2PointShape.
func String2LineType(s string) LineType {
	return LineType(lookupName(s, lineTypeNames[:]))
}

// Dashes returns the dash pattern of lt for lines of the given width.
func (lt LineType) Dashes(width vg.Length) []vg.Length {
	w := width
	if w < vg.Points(1) {
		w = vg.Points(1)
	}
	switch lt {
	case DashedLine:
		return []vg.Length{4 * w, 4 * w}
	case DottedLine:
		return []vg.Length{w, 3 * w}
	case DotDashLine:
		return []vg.Length{w, 3 * w, 4 * w, 3 * w}
	case LongdashLine:
		return []vg.Length{8 * w, 4 * w}
	case TwodashLine:
		return []vg.Length{2 * w, 2 * w, 6 * w, 2 * w}
	}
	return nil
}

// -------------------------------------------------------------------------
// Colors

var BuiltinColors = map[string]color.RGBA{
	"red":     {0xff, 0x00, 0x00, 0xff},
	"green":   {0x00, 0xff, 0x00, 0xff},
	"blue":    {0x00, 0x00, 0xff, 0xff},
	"cyan":    {0x00, 0xff, 0xff, 0xff},
	"magenta": {0xff, 0x00, 0xff, 0xff},
	"yellow":  {0xff, 0xff, 0x00, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"gray20":  {0x33, 0x33, 0x33, 0xff},
	"gray40":  {0x66, 0x66, 0x66, 0xff},
	"gray":    {0x7f, 0x7f, 0x7f, 0xff},
	"gray50":  {0x7f, 0x7f, 0x7f, 0xff},
	"gray60":  {0x99, 0x99, 0x99, 0xff},
	"gray80":  {0xcc, 0xcc, 0xcc, 0xff},
	"gray92":  {0xeb, 0xeb, 0xeb, 0xff},
	"black":   {0x00, 0x00, 0x00, 0xff},
}

// String2Color parses "#rrggbb", "#rrggbbaa" or a builtin color name.
// Anything else yields a translucent marker color so that bad input
// is visible in the output.
func String2Color(s string) color.Color {
	if strings.HasPrefix(s, "#") && len(s) >= 7 {
		var r, g, b, a uint8
		fmt.Sscanf(s[1:3], "%2x", &r)
		fmt.Sscanf(s[3:5], "%2x", &g)
		fmt.Sscanf(s[5:7], "%2x", &b)
		a = 0xff
		if len(s) >= 9 {
			fmt.Sscanf(s[7:9], "%2x", &a)
		}
		return color.NRGBA{r, g, b, a}
	}
	if col, ok := BuiltinColors[s]; ok {
		return col
	}

	return color.NRGBA{0xaa, 0x66, 0x77, 0x7f}
}

// ValidColor reports whether s is understood by String2Color.
func ValidColor(s string) bool {
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 && len(s) != 9 {
			return false
		}
		_, err := strconv.ParseUint(s[1:], 16, 32)
		return err == nil
	}
	_, ok := BuiltinColors[s]
	return ok
}
