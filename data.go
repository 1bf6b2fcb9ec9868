package qplot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"
)

var (
	// ErrNoSuchField is returned when a named field is not in a data frame.
	ErrNoSuchField = errors.New("no such field")

	// ErrEmptyData is returned when an operation needs at least one row.
	ErrEmptyData = errors.New("empty data frame")
)

// DataFrame is a columnar table: each column is a Field of length N.
// String values are interned in Pool and stored as pool indices so that
// every column can be represented as a []float64.
type DataFrame struct {
	Name    string
	N       int
	Columns map[string]Field
	Pool    *StringPool
}

// NewDataFrame returns an empty data frame. A nil pool allocates a new one.
func NewDataFrame(name string, pool *StringPool) *DataFrame {
	if pool == nil {
		pool = NewStringPool()
	}
	return &DataFrame{
		Name:    name,
		Columns: make(map[string]Field),
		Pool:    pool,
	}
}

// NewDataFrameFrom constructs a data frame from a slice of structs.
// Exported fields and methods without arguments of integer, float,
// string or time.Time type become columns.
func NewDataFrameFrom(data interface{}) (*DataFrame, error) {
	t := reflect.TypeOf(data)
	if t == nil || t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot convert %T to data frame", data)
	}
	et := t.Elem()
	v := reflect.ValueOf(data)
	df := NewDataFrame(et.Name(), nil)
	df.N = v.Len()

	// Fields first.
	for i := 0; i < et.NumField(); i++ {
		f := et.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		ft, ok := kindToFieldType(f.Type)
		if !ok {
			continue
		}
		field := NewField(df.N, ft, df.Pool)
		for j := 0; j < df.N; j++ {
			field.Data[j] = field.valueOf(v.Index(j).Field(i))
		}
		df.Columns[f.Name] = field
	}

	// The same for methods like "func(elemtype) [int,string,float,time]".
	for i := 0; i < et.NumMethod(); i++ {
		m := et.Method(i)
		mt := m.Type
		if mt.NumIn() != 1 || mt.NumOut() != 1 {
			continue
		}
		ft, ok := kindToFieldType(mt.Out(0))
		if !ok {
			continue
		}
		field := NewField(df.N, ft, df.Pool)
		for j := 0; j < df.N; j++ {
			r := m.Func.Call([]reflect.Value{v.Index(j)})
			field.Data[j] = field.valueOf(r[0])
		}
		df.Columns[m.Name] = field
	}

	return df, nil
}

func kindToFieldType(t reflect.Type) (FieldType, bool) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Int, true
	case reflect.Float32, reflect.Float64:
		return Float, true
	case reflect.String:
		return String, true
	case reflect.Struct:
		if t.Name() == "Time" && t.PkgPath() == "time" {
			return Time, true
		}
	}
	return 0, false
}

// FieldType represents the basic type of a field.
type FieldType uint

const (
	Int FieldType = iota
	Float
	String
	Time
)

func (t FieldType) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Time:
		return "Time"
	}
	return "FieldType(" + strconv.Itoa(int(t)) + ")"
}

// Field is one column of a data frame.
type Field struct {
	Type FieldType
	Data []float64

	// Pool is used to resolve String values.
	Pool *StringPool
}

// NewField allocates a field of length n.
func NewField(n int, t FieldType, pool *StringPool) Field {
	return Field{
		Type: t,
		Data: make([]float64, n),
		Pool: pool,
	}
}

func (f Field) valueOf(v reflect.Value) float64 {
	switch f.Type {
	case Int:
		if k := v.Kind(); k >= reflect.Uint && k <= reflect.Uint64 {
			return float64(v.Uint())
		}
		return float64(v.Int())
	case Float:
		return v.Float()
	case String:
		return float64(f.Pool.Add(v.String()))
	case Time:
		t := v.Interface().(time.Time)
		return float64(t.UnixNano()) / 1e9
	}
	panic("Ooops")
}

// Discrete reports whether f holds categorical data.
func (f Field) Discrete() bool {
	return f.Type == String
}

// String formats the raw value x of this field.
func (f Field) String(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	switch f.Type {
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case String:
		return f.Pool.Get(int(x))
	case Time:
		sec, frac := math.Modf(x)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(time.RFC3339)
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// StrIdx returns the raw value representing s or -1 if s is unknown.
func (f Field) StrIdx(s string) int {
	return f.Pool.Find(s)
}

// Copy returns a deep copy of f.
func (f Field) Copy() Field {
	c := NewField(len(f.Data), f.Type, f.Pool)
	copy(c.Data, f.Data)
	return c
}

// Const returns a field of the same type as f with n copies of x.
func (f Field) Const(x float64, n int) Field {
	c := NewField(n, f.Type, f.Pool)
	for i := range c.Data {
		c.Data[i] = x
	}
	return c
}

// Apply replaces every value x in f by fn(x).
func (f Field) Apply(fn func(float64) float64) {
	for i, x := range f.Data {
		f.Data[i] = fn(x)
	}
}

// Levels returns the set of distinct values in f. NaN is not a level.
func (f Field) Levels() FloatSet {
	levels := NewFloatSet()
	for _, x := range f.Data {
		if !math.IsNaN(x) {
			levels.Add(x)
		}
	}
	return levels
}

// MinMax returns the minimum and maximum value in f and their indices.
// The indices are -1 if f contains no (non-NaN) values.
func (f Field) MinMax() (min, max float64, mini, maxi int) {
	mini, maxi = -1, -1
	min, max = math.Inf(+1), math.Inf(-1)
	for i, x := range f.Data {
		if math.IsNaN(x) {
			continue
		}
		if x < min {
			min, mini = x, i
		}
		if x > max {
			max, maxi = x, i
		}
	}
	return min, max, mini, maxi
}

// Discretize returns a String field holding the formatted values of f.
// Numeric codes like 1, 0, -1 can then be used as categories.
func (f Field) Discretize() Field {
	if f.Type == String {
		return f.Copy()
	}
	d := NewField(len(f.Data), String, f.Pool)
	for i, x := range f.Data {
		d.Data[i] = float64(f.Pool.Add(f.String(x)))
	}
	return d
}

// Raw converts a user supplied value into the raw representation used in
// f. ok is false if value cannot occur in f, e.g. an unknown string.
func (f Field) Raw(value interface{}) (x float64, ok bool, err error) {
	switch v := value.(type) {
	case string:
		if f.Type == String {
			idx := f.Pool.Find(v)
			return float64(idx), idx >= 0, nil
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false, fmt.Errorf("cannot compare %s field with %q", f.Type, v)
		}
		return x, true, nil
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case time.Time:
		return float64(v.UnixNano()) / 1e9, true, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true, nil
	}
	return 0, false, fmt.Errorf("bad type %T of value", value)
}

// -------------------------------------------------------------------------
// Data frame methods

// Field returns the named field.
func (df *DataFrame) Field(name string) (Field, error) {
	f, ok := df.Columns[name]
	if !ok {
		return Field{}, fmt.Errorf("%w %q in %s", ErrNoSuchField, name, df.Name)
	}
	return f, nil
}

// Has reports whether df contains a field name.
func (df *DataFrame) Has(name string) bool {
	_, ok := df.Columns[name]
	return ok
}

// FieldNames returns the sorted names of all fields.
func (df *DataFrame) FieldNames() []string {
	names := make([]string, 0, len(df.Columns))
	for name := range df.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of df which shares the string pool.
func (df *DataFrame) Copy() *DataFrame {
	c := NewDataFrame(df.Name, df.Pool)
	c.N = df.N
	for name, f := range df.Columns {
		c.Columns[name] = f.Copy()
	}
	return c
}

// Rename renames field old to new. A no-op if old is not present.
func (df *DataFrame) Rename(old, new string) {
	if old == new {
		return
	}
	f, ok := df.Columns[old]
	if !ok {
		return
	}
	delete(df.Columns, old)
	df.Columns[new] = f
}

// Delete removes field name from df.
func (df *DataFrame) Delete(name string) {
	delete(df.Columns, name)
}

// Append adds the rows of other to df. Both must have the same fields.
func (df *DataFrame) Append(other *DataFrame) error {
	if !NewStringSetFrom(df.FieldNames()).Equals(other.FieldNames()) {
		return fmt.Errorf("cannot append %v to %v", other.FieldNames(), df.FieldNames())
	}
	for name, f := range df.Columns {
		o := other.Columns[name]
		if f.Type == String && o.Pool != f.Pool {
			for _, x := range o.Data {
				f.Data = append(f.Data, float64(f.Pool.Add(o.String(x))))
			}
		} else {
			f.Data = append(f.Data, o.Data...)
		}
		df.Columns[name] = f
	}
	df.N += other.N
	return nil
}

// Head returns the first n rows of df.
func (df *DataFrame) Head(n int) *DataFrame {
	if n > df.N {
		n = df.N
	}
	return Subset(df, func(i int) bool { return i < n })
}

// Print dumps df in tabular form to w.
func (df *DataFrame) Print(w io.Writer) {
	names := df.FieldNames()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%d rows)\n", df.Name, df.N)
	for _, name := range names {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)
	for i := 0; i < df.N; i++ {
		fmt.Fprintf(tw, "%d", i)
		for _, name := range names {
			f := df.Columns[name]
			fmt.Fprintf(tw, "\t%s", f.String(f.Data[i]))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

// -------------------------------------------------------------------------
// Row selection

// Subset returns the rows i of df for which keep(i) is true.
func Subset(df *DataFrame, keep func(i int) bool) *DataFrame {
	idx := make([]int, 0, df.N)
	for i := 0; i < df.N; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return Select(df, idx)
}

// Select returns a new data frame with the rows idx of df.
func Select(df *DataFrame, idx []int) *DataFrame {
	result := NewDataFrame(df.Name, df.Pool)
	result.N = len(idx)
	for name, f := range df.Columns {
		g := NewField(len(idx), f.Type, f.Pool)
		for j, i := range idx {
			g.Data[j] = f.Data[i]
		}
		result.Columns[name] = g
	}
	return result
}

// Filter extracts all rows from df where field==value.
// Value may be an integer, a float, a string or a time.
func Filter(df *DataFrame, field string, value interface{}) (*DataFrame, error) {
	f, err := df.Field(field)
	if err != nil {
		return nil, err
	}
	x, ok, err := f.Raw(value)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", field, err)
	}
	if !ok {
		return Subset(df, func(int) bool { return false }), nil
	}
	return Subset(df, func(i int) bool { return f.Data[i] == x }), nil
}

// Exclude drops all rows from df where field equals one of values.
func Exclude(df *DataFrame, field string, values ...interface{}) (*DataFrame, error) {
	f, err := df.Field(field)
	if err != nil {
		return nil, err
	}
	drop := NewFloatSet()
	for _, v := range values {
		x, ok, err := f.Raw(v)
		if err != nil {
			return nil, fmt.Errorf("exclude %s: %w", field, err)
		}
		if ok {
			drop.Add(x)
		}
	}
	return Subset(df, func(i int) bool { return !drop.Contains(f.Data[i]) }), nil
}

// Levels returns the distinct values of field in df.
func Levels(df *DataFrame, field string) FloatSet {
	f, ok := df.Columns[field]
	if !ok {
		return NewFloatSet()
	}
	return f.Levels()
}

// MinMax determines minimum and maximum value of field in df and their
// indices. The indices are -1 if there is no such field or no values.
func MinMax(df *DataFrame, field string) (min, max float64, mini, maxi int) {
	f, ok := df.Columns[field]
	if !ok {
		return math.NaN(), math.NaN(), -1, -1
	}
	return f.MinMax()
}

// Partition splits df into one data frame per level of field.
func Partition(df *DataFrame, field string, levels []float64) []*DataFrame {
	f := df.Columns[field]
	idx := make(map[float64][]int, len(levels))
	for i, x := range f.Data {
		idx[x] = append(idx[x], i)
	}
	parts := make([]*DataFrame, len(levels))
	for j, level := range levels {
		parts[j] = Select(df, idx[level])
	}
	return parts
}
