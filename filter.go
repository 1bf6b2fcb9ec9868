package qplot

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vdobler/qplot/stat"
)

// ErrDuplicateCell is returned by Pivot if two rows share the same cell.
var ErrDuplicateCell = errors.New("duplicate entry in pivot cell")

// IQRFilter keeps the rows of df whose value in field lies inside the
// inter quartile bounds of the whole column (inclusive). Rows with a NaN
// value are dropped. The bounds used are returned too.
func IQRFilter(df *DataFrame, field string, mode stat.BoundMode) (*DataFrame, stat.Bounds, error) {
	f, err := df.Field(field)
	if err != nil {
		return nil, stat.Bounds{}, err
	}
	if f.Discrete() {
		return nil, stat.Bounds{}, fmt.Errorf("iqr filter on %s field %s", f.Type, field)
	}
	bounds := stat.IQRBounds(f.Data, mode)
	return Subset(df, func(i int) bool { return bounds.Contains(f.Data[i]) }), bounds, nil
}

// GroupMean computes the mean of value for every distinct combination of
// the keys fields. The result has one row per combination with the key
// fields and value as columns, ordered by first appearance.
func GroupMean(df *DataFrame, keys []string, value string) (*DataFrame, error) {
	vf, err := df.Field(value)
	if err != nil {
		return nil, err
	}
	kfs := make([]Field, len(keys))
	for i, k := range keys {
		if kfs[i], err = df.Field(k); err != nil {
			return nil, err
		}
	}

	type group struct {
		key   []float64
		sum   float64
		count int
	}
	var order []string
	groups := make(map[string]*group)
	for i := 0; i < df.N; i++ {
		y := vf.Data[i]
		key := make([]float64, len(keys))
		parts := make([]string, len(keys))
		for j, kf := range kfs {
			key[j] = kf.Data[i]
			parts[j] = strconv.FormatFloat(key[j], 'g', -1, 64)
		}
		id := strings.Join(parts, "\x00")
		g, ok := groups[id]
		if !ok {
			g = &group{key: key}
			groups[id] = g
			order = append(order, id)
		}
		if !math.IsNaN(y) {
			g.sum += y
			g.count++
		}
	}

	result := NewDataFrame("mean of "+df.Name, df.Pool)
	result.N = len(order)
	cols := make([]Field, len(keys))
	for j, kf := range kfs {
		cols[j] = NewField(result.N, kf.Type, df.Pool)
	}
	mean := NewField(result.N, Float, df.Pool)
	for i, id := range order {
		g := groups[id]
		for j := range keys {
			cols[j].Data[i] = g.key[j]
		}
		if g.count == 0 {
			mean.Data[i] = math.NaN()
		} else {
			mean.Data[i] = g.sum / float64(g.count)
		}
	}
	for j, k := range keys {
		result.Columns[k] = cols[j]
	}
	result.Columns[value] = mean
	return result, nil
}

// Grid is a table of values indexed by two categorical fields.
type Grid struct {
	RowName, ColName, ValueName string

	RowLevels, ColLevels []string

	// Values[row][col], NaN if empty.
	Values [][]float64
}

// Pivot reshapes the long format df into a Grid with one row per level of
// index and one column per level of columns. Levels of numeric fields are
// sorted by value, levels of String fields lexically, so "10" comes before
// "2" there. Two rows for the same cell are an error.
func Pivot(df *DataFrame, index, columns, value string) (*Grid, error) {
	rf, err := df.Field(index)
	if err != nil {
		return nil, err
	}
	cf, err := df.Field(columns)
	if err != nil {
		return nil, err
	}
	vf, err := df.Field(value)
	if err != nil {
		return nil, err
	}
	if df.N == 0 {
		return nil, fmt.Errorf("pivot %s: %w", df.Name, ErrEmptyData)
	}

	g := &Grid{
		RowName:   index,
		ColName:   columns,
		ValueName: value,
		RowLevels: levelNames(rf),
		ColLevels: levelNames(cf),
	}
	rowIdx, colIdx := indexOf(g.RowLevels), indexOf(g.ColLevels)
	g.Values = make([][]float64, len(g.RowLevels))
	seen := make([][]bool, len(g.RowLevels))
	for r := range g.Values {
		g.Values[r] = make([]float64, len(g.ColLevels))
		seen[r] = make([]bool, len(g.ColLevels))
		for c := range g.Values[r] {
			g.Values[r][c] = math.NaN()
		}
	}
	for i := 0; i < df.N; i++ {
		if math.IsNaN(rf.Data[i]) || math.IsNaN(cf.Data[i]) {
			continue
		}
		rn, cn := rf.String(rf.Data[i]), cf.String(cf.Data[i])
		r, c := rowIdx[rn], colIdx[cn]
		if seen[r][c] {
			return nil, fmt.Errorf("pivot %s=%s, %s=%s: %w", index, rn, columns, cn, ErrDuplicateCell)
		}
		seen[r][c] = true
		g.Values[r][c] = vf.Data[i]
	}
	return g, nil
}

// Max returns the largest value in the grid, NaN if the grid is empty.
func (g *Grid) Max() float64 {
	max := math.NaN()
	for _, row := range g.Values {
		for _, v := range row {
			if !math.IsNaN(v) && (math.IsNaN(max) || v > max) {
				max = v
			}
		}
	}
	return max
}

// DataFrame converts g back to long format with String fields RowName
// and ColName and a Float field ValueName. Empty cells are skipped.
func (g *Grid) DataFrame(pool *StringPool) *DataFrame {
	df := NewDataFrame("grid of "+g.ValueName, pool)
	var rows, cols, vals []float64
	for r, rn := range g.RowLevels {
		for c, cn := range g.ColLevels {
			v := g.Values[r][c]
			if math.IsNaN(v) {
				continue
			}
			rows = append(rows, float64(df.Pool.Add(rn)))
			cols = append(cols, float64(df.Pool.Add(cn)))
			vals = append(vals, v)
		}
	}
	df.N = len(vals)
	df.Columns[g.RowName] = Field{Type: String, Data: rows, Pool: df.Pool}
	df.Columns[g.ColName] = Field{Type: String, Data: cols, Pool: df.Pool}
	df.Columns[g.ValueName] = Field{Type: Float, Data: vals, Pool: df.Pool}
	return df
}

var wellRe = regexp.MustCompile(`^\s*([A-Za-z]+)\s*0*(\d+)\s*$`)

// SplitWellPositions splits plate well positions like "B07" in field
// into a String field "row" ("B") and an Int field "column" (7).
func SplitWellPositions(df *DataFrame, field string) (*DataFrame, error) {
	f, err := df.Field(field)
	if err != nil {
		return nil, err
	}
	result := df.Copy()
	row := NewField(df.N, String, df.Pool)
	col := NewField(df.N, Int, df.Pool)
	for i, x := range f.Data {
		s := f.String(x)
		m := wellRe.FindStringSubmatch(s)
		if m == nil {
			return nil, fmt.Errorf("well position %q in row %d", s, i)
		}
		n, _ := strconv.Atoi(m[2])
		row.Data[i] = float64(df.Pool.Add(m[1]))
		col.Data[i] = float64(n)
	}
	result.Columns["row"] = row
	result.Columns["column"] = col
	return result, nil
}

// levelNames returns the distinct values of f in pivot order: numeric
// fields by value, string fields lexically even if they hold numbers.
func levelNames(f Field) []string {
	names := make([]string, 0)
	for _, x := range f.Levels().Elements() {
		names = append(names, f.String(x))
	}
	if f.Type == String {
		sort.Strings(names)
	}
	return names
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}
