package qplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
)

// Scale provides position scales like x- and y-axis as well as color
// scales. A scale is either discrete, mapping levels to positions
// 0, 1, 2, ... or palette colors, or continuous.
type Scale struct {
	Aesthetic string
	Discrete  bool

	// Order fixes the order of the levels of a discrete scale. Data
	// with levels not in Order is not drawn. Empty: sorted levels.
	Order []string

	// Values are the colors of a discrete color scale. Empty: the
	// palette of the theme.
	Values []string

	// Reverse maps the first level to the highest position.
	Reverse bool

	// Breaks are fixed tick positions of a continuous scale.
	Breaks []float64

	// Limits of a continuous scale. NaN means determined from data.
	Limits [2]float64

	// Log selects a logarithmic continuous position scale.
	Log bool

	// ColorMap maps a continuous color scale. Its range is set from
	// Limits or the data.
	ColorMap palette.ColorMap

	// Trained domain.
	DomainMin, DomainMax float64
	DomainLevels         StringSet

	levels  []string
	index   map[string]int
	palette []color.Color
}

// NewScale sets up a new scale for the given aesthetic, suitable for
// the given data in field.
func NewScale(aesthetic string, field Field) *Scale {
	if field.Discrete() {
		return DiscreteScale(aesthetic)
	}
	return ContinuousScale(aesthetic)
}

// DiscreteScale returns a discrete scale with the given level order.
func DiscreteScale(aesthetic string, order ...string) *Scale {
	return &Scale{
		Aesthetic:    aesthetic,
		Discrete:     true,
		Order:        order,
		Limits:       [2]float64{math.NaN(), math.NaN()},
		DomainMin:    math.Inf(+1),
		DomainMax:    math.Inf(-1),
		DomainLevels: NewStringSet(),
	}
}

// ContinuousScale returns a continuous scale without limits.
func ContinuousScale(aesthetic string) *Scale {
	s := DiscreteScale(aesthetic)
	s.Discrete = false
	return s
}

// WithLimits sets the limits of s, NaN leaving one side open.
func (s *Scale) WithLimits(min, max float64) *Scale {
	s.Limits = [2]float64{min, max}
	return s
}

// Train updates the domain of s according to the data found in f.
func (s *Scale) Train(f Field) {
	if s.DomainLevels == nil {
		s.DomainLevels = NewStringSet()
	}
	if s.Discrete {
		for _, x := range f.Levels().Elements() {
			s.DomainLevels.Add(f.String(x))
		}
		return
	}
	min, max, mini, maxi := f.MinMax()
	if mini != -1 && min < s.DomainMin {
		s.DomainMin = min
	}
	if maxi != -1 && max > s.DomainMax {
		s.DomainMax = max
	}
}

// Prepare initialises the mapping after training.
func (s *Scale) Prepare(p *Plot) {
	if s.Discrete {
		s.prepareDiscrete(p)
	} else {
		s.prepareContinuous()
	}
}

func (s *Scale) prepareDiscrete(p *Plot) {
	if len(s.Order) == 0 {
		s.levels = s.DomainLevels.Elements()
		SortLevels(s.levels)
	} else {
		s.levels = s.levels[:0]
		for _, l := range s.Order {
			if !s.DomainLevels.Contains(l) {
				p.Warnf("Level %q of %s not present in data", l, s.Aesthetic)
				continue
			}
			s.levels = append(s.levels, l)
		}
		unknown := NewStringSetFrom(s.DomainLevels.Elements())
		unknown.Remove(NewStringSetFrom(s.Order))
		if len(unknown) > 0 {
			p.Warnf("Levels %v of %s are not ordered and will not be drawn", unknown.Elements(), s.Aesthetic)
		}
	}
	s.index = indexOf(s.levels)

	values := s.Values
	if len(values) == 0 {
		values = p.Theme.palette()
	}
	s.palette = make([]color.Color, len(values))
	for i, v := range values {
		s.palette[i] = String2Color(v)
	}
}

func (s *Scale) prepareContinuous() {
	if s.ColorMap == nil {
		return
	}
	min, max := s.DomainMin, s.DomainMax
	if !math.IsNaN(s.Limits[0]) {
		min = s.Limits[0]
	}
	if !math.IsNaN(s.Limits[1]) {
		max = s.Limits[1]
	}
	if math.IsInf(min, 0) || math.IsInf(max, 0) {
		min, max = 0, 1
	}
	if max <= min {
		max = min + 1
	}
	s.ColorMap.SetMin(min)
	s.ColorMap.SetMax(max)
}

// Levels returns the levels of a prepared discrete scale in order.
func (s *Scale) Levels() []string {
	return s.levels
}

// Index returns the position of level in a discrete scale.
func (s *Scale) Index(level string) (int, bool) {
	i, ok := s.index[level]
	return i, ok
}

// Pos maps the raw value x of field f to its position. ok is false for
// levels not shown on a discrete scale.
func (s *Scale) Pos(f Field, x float64) (pos float64, ok bool) {
	if !s.Discrete {
		return x, !math.IsNaN(x)
	}
	i, ok := s.index[f.String(x)]
	if !ok {
		return 0, false
	}
	if s.Reverse {
		i = len(s.levels) - 1 - i
	}
	return float64(i), true
}

// LevelColor returns the color of the i-th level of a discrete scale.
func (s *Scale) LevelColor(i int) color.Color {
	if len(s.palette) == 0 {
		return color.Black
	}
	return s.palette[i%len(s.palette)]
}

// Color maps the raw value x of field f to a color.
func (s *Scale) Color(f Field, x float64) color.Color {
	if s.Discrete {
		i, ok := s.index[f.String(x)]
		if !ok {
			return nil
		}
		return s.LevelColor(i)
	}
	if s.ColorMap == nil {
		return color.Black
	}
	c, err := s.ColorMap.At(x)
	if err != nil {
		return nil
	}
	return c
}

// Ticks returns the tick marks of s: one per level for discrete scales,
// one per break for continuous ones.
func (s *Scale) Ticks() []plot.Tick {
	if s.Discrete {
		ticks := make([]plot.Tick, len(s.levels))
		for i, l := range s.levels {
			pos := float64(i)
			if s.Reverse {
				pos = float64(len(s.levels) - 1 - i)
			}
			ticks[i] = plot.Tick{Value: pos, Label: l}
		}
		return ticks
	}
	ticks := make([]plot.Tick, len(s.Breaks))
	for i, b := range s.Breaks {
		ticks[i] = plot.Tick{Value: b, Label: FormatNumber(b)}
	}
	return ticks
}

// resolution is the smallest distance between two distinct values of a
// continuous field, 1 if there are less than two values.
func resolution(f Field) float64 {
	levels := f.Levels().Elements()
	res := math.Inf(1)
	for i := 1; i < len(levels); i++ {
		res = math.Min(res, levels[i]-levels[i-1])
	}
	if math.IsInf(res, 1) {
		return 1
	}
	return res
}
