package qplot

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/plot/vg"
)

func TestString2Color(t *testing.T) {
	tests := []struct {
		s string
		c color.Color
	}{
		{"#1256ab", color.NRGBA{0x12, 0x56, 0xab, 0xff}},
		{"#1256abcd", color.NRGBA{0x12, 0x56, 0xab, 0xcd}},
		{"#EDAB21", color.NRGBA{0xed, 0xab, 0x21, 0xff}},
		{"red", color.NRGBA{0xff, 0x00, 0x00, 0xff}},
		{"green", color.NRGBA{0x00, 0xff, 0x00, 0xff}},
		{"blue", color.NRGBA{0x00, 0x00, 0xff, 0xff}},
		{"nonsens", color.NRGBA{0xaa, 0x66, 0x77, 0x7f}},
	}

	for i, tc := range tests {
		got := String2Color(tc.s)
		rg, gg, bg, ag := got.RGBA()
		rw, gw, bw, aw := tc.c.RGBA()
		if rg != rw || gg != gw || bg != bw || ag != aw {
			t.Errorf("%d %q: got %04X, %04X, %04X, %04X want %04X, %04X, %04X, %04X",
				i, tc.s, rg, gg, bg, ag, rw, gw, bw, aw)
		}
	}
}

func TestValidColor(t *testing.T) {
	assert.True(t, ValidColor("#bb334c"))
	assert.True(t, ValidColor("gray80"))
	assert.False(t, ValidColor("#bb33"))
	assert.False(t, ValidColor("bordeaux"))
}

func TestString2Float(t *testing.T) {
	assert.Equal(t, 0.5, String2Float("0.5", 0, 1))
	assert.Equal(t, 0.25, String2Float("25%", 0, 1))
	assert.Equal(t, 1.0, String2Float("7", 0, 1))
	assert.Equal(t, 0.0, String2Float("-3", 0, 1))
	assert.Equal(t, 5.0, String2Float("what", 0, 10))
}

func TestSetAlphaDesaturate(t *testing.T) {
	c := SetAlpha(color.NRGBA{0xff, 0, 0, 0xff}, 0.2)
	assert.Equal(t, color.NRGBA{0xff, 0, 0, 0x33}, c)
	assert.Nil(t, SetAlpha(nil, 0.5))

	red := color.NRGBA{0xff, 0, 0, 0xff}
	assert.Equal(t, red, Desaturate(red, 1))
	gray := color.NRGBAModel.Convert(Desaturate(red, 0)).(color.NRGBA)
	assert.Equal(t, gray.R, gray.G)
	assert.Equal(t, gray.G, gray.B)
	assert.Equal(t, uint8(0xff), gray.A)
}

func TestPointShapes(t *testing.T) {
	assert.Equal(t, SolidCirclePoint, String2PointShape("solid-circle"))
	assert.Equal(t, DiamondPoint, String2PointShape("diamond"))
	assert.True(t, SolidCirclePoint.Solid())
	assert.False(t, CirclePoint.Solid())
	assert.Equal(t, CirclePoint, String2PointShape("15"), "numbers wrap around")
	assert.Equal(t, "star", StarPoint.String())
	assert.Equal(t, "PointShape(42)", PointShape(42).String())
}

func TestLineDashes(t *testing.T) {
	assert.Nil(t, SolidLine.Dashes(vg.Points(2)))
	assert.Equal(t, []vg.Length{8, 8}, DashedLine.Dashes(vg.Points(2)))
	assert.Equal(t, DottedLine, String2LineType("dotted"))
	assert.Equal(t, BlankLine, String2LineType("wiggly"))
	assert.Equal(t, "twodash", TwodashLine.String())
}
