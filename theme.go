package qplot

import (
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Theme collects the default styles of the geoms and general layout
// parameters. Fields left empty fall back to DefaultTheme.
type Theme struct {
	PointStyle, LineStyle, BarStyle, RectStyle AesMapping
	TextStyle, TileStyle, BracketStyle         AesMapping

	// Palette is used for discrete color and fill scales.
	Palette []string

	// SlotWidth is the fraction of a discrete x slot that is used by
	// dodged bars, violins and points.
	SlotWidth float64

	// FontSize is the size of tick labels, titles are a bit larger.
	FontSize vg.Length

	// Background fills the plotting canvas, nil means transparent.
	Background color.Color
}

// DeepPalette is the default palette for discrete colors.
var DeepPalette = []string{
	"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3",
	"#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd",
}

var DefaultTheme = Theme{
	PointStyle: AesMapping{
		"size":      "5",
		"shape":     "solid-circle",
		"color":     "#222222",
		"fill":      "#222222",
		"alpha":     "1",
		"linewidth": "0.75",
	},
	LineStyle: AesMapping{
		"size":       "1.5",
		"linetype":   "solid",
		"color":      "#222222",
		"alpha":      "1",
		"markersize": "6",
	},
	BarStyle: AesMapping{
		"linetype":   "solid",
		"color":      "black",
		"fill":       "gray20",
		"alpha":      "1",
		"size":       "1",
		"saturation": "1",
	},
	RectStyle: AesMapping{
		"linetype": "solid",
		"color":    "black",
		"fill":     "gray80",
		"alpha":    "1",
		"size":     "1.5",
		"width":    "0.15",
	},
	TextStyle: AesMapping{
		"size":  "10",
		"color": "black",
	},
	TileStyle: AesMapping{
		"color": "white",
		"size":  "0.5",
	},
	BracketStyle: AesMapping{
		"color":  "black",
		"size":   "1",
		"offset": "0.05",
		"tip":    "0",
		"loc":    "inside",
	},
	Palette:   DeepPalette,
	SlotWidth: 0.8,
	FontSize:  vg.Points(10),
}

// MergeStyles merges the mappings ams. For each aesthetic the value of the
// first mapping setting it wins.
func MergeStyles(ams ...AesMapping) AesMapping {
	merged := make(AesMapping)
	for i := len(ams) - 1; i >= 0; i-- {
		for aes, value := range ams[i] {
			merged[aes] = value
		}
	}
	return merged
}

func (t Theme) palette() []string {
	if len(t.Palette) > 0 {
		return t.Palette
	}
	return DefaultTheme.Palette
}

func (t Theme) slotWidth() float64 {
	if t.SlotWidth > 0 {
		return t.SlotWidth
	}
	return DefaultTheme.SlotWidth
}

func (t Theme) fontSize() vg.Length {
	if t.FontSize > 0 {
		return t.FontSize
	}
	return DefaultTheme.FontSize
}
