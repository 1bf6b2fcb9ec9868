// Package config holds the recipes which describe a single chart: where
// the data comes from, how it is filtered, which columns are drawn and how
// the result is styled and saved.
//
// A recipe is read from a YAML file on top of per-kind defaults and may be
// overridden by environment variables with the prefix QPLOT.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vdobler/qplot"
	"github.com/vdobler/qplot/stat"
)

// Kind is the type of chart a recipe produces.
type Kind string

const (
	Line    Kind = "line"
	Heatmap Kind = "heatmap"
	Violin  Kind = "violin"
	Bar     Kind = "bar"
)

// Kinds lists all chart kinds.
var Kinds = []Kind{Line, Heatmap, Violin, Bar}

// ErrInvalidRecipe is returned for recipes which cannot be drawn.
var ErrInvalidRecipe = errors.New("invalid recipe")

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q: %w", s, ErrInvalidRecipe)
}

// PlotType is the label put into derived output file names.
func (k Kind) PlotType() string {
	switch k {
	case Line:
		return "LinePlot"
	case Heatmap:
		return "Heatmap"
	case Violin:
		return "Violin"
	case Bar:
		return "BarPlot"
	}
	return "Plot"
}

// Recipe describes one chart.
type Recipe struct {
	Kind    Kind    `yaml:"kind"`
	Input   Input   `yaml:"input"`
	Columns Columns `yaml:"columns"`
	Filters Filters `yaml:"filters"`
	Order   Order   `yaml:"order"`
	Style   Style   `yaml:"style"`
	Stats   Stats   `yaml:"stats"`
	Output  Output  `yaml:"output"`

	// Debug logs the filtered data and the test results.
	Debug bool `yaml:"debug,omitempty"`
}

// Input is the delimited data file.
type Input struct {
	File      string `yaml:"file"`
	IndexCol  bool   `yaml:"index_col"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

// Columns names the fields of the data. Line, violin and bar charts use
// X, Y and Hue. Heatmaps show the mean of Value per Rows and Cols, or per
// plate well if Well is set.
type Columns struct {
	X     string `yaml:"x,omitempty"`
	Y     string `yaml:"y,omitempty"`
	Hue   string `yaml:"hue,omitempty"`
	Rows  string `yaml:"rows,omitempty"`
	Cols  string `yaml:"cols,omitempty"`
	Value string `yaml:"value,omitempty"`
	Well  string `yaml:"well,omitempty"`
}

// Filters are applied in the order Match, IQR, Exclude.
type Filters struct {
	Match   *Match   `yaml:"match,omitempty"`
	IQR     *IQR     `yaml:"iqr,omitempty"`
	Exclude *Exclude `yaml:"exclude,omitempty"`
}

// Match keeps the rows where Column equals Value.
type Match struct {
	Column string      `yaml:"column"`
	Value  interface{} `yaml:"value"`
}

// IQR drops outliers of Column. Mode is "symmetric" or "zero-floor".
type IQR struct {
	Column string `yaml:"column"`
	Mode   string `yaml:"mode"`
}

// Exclude drops the rows where Column equals one of Values.
type Exclude struct {
	Column string        `yaml:"column"`
	Values []interface{} `yaml:"values"`
}

// Order fixes the order of the categories on the x axis and of the hue
// groups. Categories not listed are not drawn.
type Order struct {
	X   []string `yaml:"x,omitempty"`
	Hue []string `yaml:"hue,omitempty"`
}

// Style collects the cosmetic settings.
type Style struct {
	Title  string `yaml:"title,omitempty"`
	XLabel string `yaml:"x_label,omitempty"`
	YLabel string `yaml:"y_label,omitempty"`

	Palette []string `yaml:"palette,omitempty"`

	// TopColor is the saturated end of the heatmap palette, Threshold
	// the value below which cells are drawn in UnderColor.
	TopColor   string   `yaml:"top_color,omitempty"`
	Threshold  *float64 `yaml:"threshold,omitempty"`
	UnderColor string   `yaml:"under_color,omitempty"`

	YMin   *float64  `yaml:"y_min,omitempty"`
	YMax   *float64  `yaml:"y_max,omitempty"`
	XTicks []float64 `yaml:"x_ticks,omitempty"`

	XRotate float64 `yaml:"x_rotate,omitempty"`
	YRotate float64 `yaml:"y_rotate,omitempty"`

	LineWidth      float64 `yaml:"line_width,omitempty"`
	PointSize      float64 `yaml:"point_size,omitempty"`
	PointEdgeWidth float64 `yaml:"point_edge_width,omitempty"`
	CapSize        float64 `yaml:"cap_size,omitempty"`
	Markers        bool    `yaml:"markers,omitempty"`
	HideLegend     bool    `yaml:"hide_legend,omitempty"`
}

// Stats selects the statistics.
type Stats struct {
	// Error around means: "sd", "se" or "none".
	Error string `yaml:"error,omitempty"`

	// Cut extends violins by Cut bandwidths beyond the data.
	Cut float64 `yaml:"cut,omitempty"`

	// Significance brackets of bar charts.
	Significance bool   `yaml:"significance,omitempty"`
	HideNS       bool   `yaml:"hide_ns,omitempty"`
	BracketLoc   string `yaml:"bracket_loc,omitempty"`

	// Scatter overlays the observations on line charts.
	Scatter bool `yaml:"scatter,omitempty"`
}

// Output controls the name and format of the image file.
type Output struct {
	// File is used verbatim if set.
	File string `yaml:"file,omitempty"`

	// Title replaces the input file name as stem of the output name.
	Title string `yaml:"title,omitempty"`
	Dir   string `yaml:"dir,omitempty"`
	Infix string `yaml:"infix,omitempty"`

	Format string  `yaml:"format"`
	Width  float64 `yaml:"width"`  // inch
	Height float64 `yaml:"height"` // inch
	DPI    int     `yaml:"dpi,omitempty"`
}

func float(x float64) *float64 { return &x }

// Defaults returns the recipe used for kind when nothing else is
// specified.
func Defaults(kind Kind) *Recipe {
	r := &Recipe{
		Kind:   kind,
		Output: Output{Format: "svg", Width: 6.4, Height: 4.8},
	}
	switch kind {
	case Line:
		r.Input.IndexCol = true
		r.Columns = Columns{X: "Time", Y: "Copies", Hue: "Condition"}
		r.Style.XTicks = []float64{8, 16, 24, 48}
		r.Style.Markers = true
		r.Stats = Stats{Error: "se", Scatter: true}
		r.Output.Dir = "generated_images"
		r.Output.DPI = 300
	case Heatmap:
		r.Columns = Columns{Rows: "Tissue", Cols: "Infection", Value: "MHV-Y"}
		r.Filters = Filters{
			IQR:     &IQR{Column: "MHV-Y", Mode: "symmetric"},
			Exclude: &Exclude{Column: "Infection", Values: []interface{}{"yHV68"}},
		}
		r.Style.TopColor = "#bb334c"
		r.Style.UnderColor = "#ffffff"
		r.Style.LineWidth = 0.5
		r.Style.XRotate = 90
	case Violin:
		r.Input.IndexCol = true
		r.Columns = Columns{X: "Tissue", Y: "Log_Copies", Hue: "Treatment"}
		r.Order = Order{
			X:   []string{"mLN", "PeyersPatch", "Colon"},
			Hue: []string{"MHV-Y", "MHV-Y_dHE"},
		}
		r.Style.Palette = []string{"#AE3899", "#CF92DD", "#009933", "#EDAB21"}
		r.Style.YMin, r.Style.YMax = float(0), float(7)
		r.Style.LineWidth = 1
		r.Style.PointSize = 5
		r.Style.PointEdgeWidth = 0.75
		r.Style.HideLegend = true
		r.Stats.Cut = 1
		r.Output.Width, r.Output.Height = 5, 2
	case Bar:
		r.Columns = Columns{X: "log(MOI)", Y: "LogValue", Hue: "IRG"}
		r.Filters = Filters{
			Match: &Match{Column: "Viral Genotype", Value: "MHV-Y"},
		}
		r.Order = Order{
			X:   []string{"1", "0", "-1", "-2", "-3", "-4", "-5", "-6"},
			Hue: []string{"WT", "KO"},
		}
		r.Style.Palette = []string{"#EDAB21", "#AE3899", "#CF92DD"}
		r.Style.YMin = float(0)
		r.Style.XRotate = 90
		r.Style.LineWidth = 1
		r.Style.PointSize = 3
		r.Style.PointEdgeWidth = 0.75
		r.Style.CapSize = 0.1
		r.Stats = Stats{Error: "sd", Significance: true, HideNS: true, BracketLoc: "outside"}
		r.Output.Format = "png"
		r.Output.Width, r.Output.Height = 7.2, 6
		r.Output.DPI = 300
	}
	return r
}

// Load reads the recipe in path on top of the defaults for kind. The kind
// stated in the file must match kind if both are given. An empty path
// yields the defaults. Environment overrides are applied last.
func Load(path string, kind Kind) (*Recipe, error) {
	if path == "" {
		if kind == "" {
			return nil, fmt.Errorf("no recipe and no chart kind: %w", ErrInvalidRecipe)
		}
		r := Defaults(kind)
		return r, r.ApplyEnv()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	defer file.Close()
	r, err := Read(file, kind)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return r, r.ApplyEnv()
}

// Read parses a YAML recipe from rd on top of the defaults for its kind.
func Read(rd io.Reader, kind Kind) (*Recipe, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Kind Kind `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	switch {
	case probe.Kind == "" && kind == "":
		return nil, fmt.Errorf("recipe states no chart kind: %w", ErrInvalidRecipe)
	case probe.Kind == "":
		probe.Kind = kind
	case kind != "" && probe.Kind != kind:
		return nil, fmt.Errorf("recipe is for a %s chart, not %s: %w", probe.Kind, kind, ErrInvalidRecipe)
	}
	if _, err := ParseKind(string(probe.Kind)); err != nil {
		return nil, err
	}

	r := Defaults(probe.Kind)
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	r.Kind = probe.Kind
	return r, nil
}

// Env are the settings which can be overridden from the environment,
// e.g. QPLOT_FORMAT=png.
type Env struct {
	Format    string `envconfig:"FORMAT"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
	DPI       int    `envconfig:"DPI"`
	Debug     bool   `envconfig:"DEBUG"`
}

// ApplyEnv overrides r with the QPLOT_* environment variables which are set.
func (r *Recipe) ApplyEnv() error {
	var env Env
	if err := envconfig.Process("qplot", &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if env.Format != "" {
		r.Output.Format = env.Format
	}
	if env.OutputDir != "" {
		r.Output.Dir = env.OutputDir
	}
	if env.DPI > 0 {
		r.Output.DPI = env.DPI
	}
	if env.Debug {
		r.Debug = true
	}
	return nil
}

// Validate reports every problem of r which would stop the chart from
// being drawn.
func (r *Recipe) Validate() error {
	var errs []error
	add := func(f string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(f, args...))
	}

	if _, err := ParseKind(string(r.Kind)); err != nil {
		errs = append(errs, err)
	}
	if r.Input.File == "" {
		add("no input file")
	}
	if len([]rune(r.Input.Delimiter)) > 1 {
		add("delimiter %q is not a single character", r.Input.Delimiter)
	}

	required := map[string]string{}
	switch r.Kind {
	case Line:
		required = map[string]string{"x": r.Columns.X, "y": r.Columns.Y}
	case Violin, Bar:
		required = map[string]string{"x": r.Columns.X, "y": r.Columns.Y, "hue": r.Columns.Hue}
	case Heatmap:
		required = map[string]string{"value": r.Columns.Value}
		if r.Columns.Well == "" {
			required["rows"], required["cols"] = r.Columns.Rows, r.Columns.Cols
		}
	}
	for _, name := range []string{"x", "y", "hue", "rows", "cols", "value"} {
		if v, ok := required[name]; ok && v == "" {
			add("column %s is not set", name)
		}
	}

	if m := r.Filters.Match; m != nil && m.Column == "" {
		add("match filter without column")
	}
	if f := r.Filters.IQR; f != nil {
		if f.Column == "" {
			add("iqr filter without column")
		}
		if _, err := r.BoundMode(); err != nil {
			errs = append(errs, err)
		}
	}
	if e := r.Filters.Exclude; e != nil && e.Column == "" && len(e.Values) > 0 {
		add("exclude filter without column")
	}

	for _, c := range r.Style.Palette {
		if !qplot.ValidColor(c) {
			add("bad palette color %q", c)
		}
	}
	for _, c := range []string{r.Style.TopColor, r.Style.UnderColor} {
		if c != "" && !qplot.ValidColor(c) {
			add("bad color %q", c)
		}
	}
	if r.Kind == Heatmap && r.Style.TopColor == "" {
		add("heatmap needs a top_color")
	}

	if _, err := r.ErrorKind(); err != nil {
		errs = append(errs, err)
	}
	switch r.Stats.BracketLoc {
	case "", "inside", "outside":
	default:
		add("bracket_loc must be inside or outside, not %q", r.Stats.BracketLoc)
	}

	if r.Output.File != "" {
		if _, err := qplot.FormatOf(r.Output.File); err != nil {
			errs = append(errs, err)
		}
	} else if !qplot.SupportedFormat(r.Output.Format) {
		add("unsupported output format %q", r.Output.Format)
	}
	if r.Output.Width < 0 || r.Output.Height < 0 || r.Output.DPI < 0 {
		add("negative output size")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRecipe, errors.Join(errs...))
}

// ErrorKind returns the error to show around means.
func (r *Recipe) ErrorKind() (stat.ErrorKind, error) {
	switch r.Stats.Error {
	case "", "none":
		return stat.NoError, nil
	case "sd":
		return stat.SD, nil
	case "se", "ci68":
		return stat.SE, nil
	}
	return stat.NoError, fmt.Errorf("error must be sd, se or none, not %q", r.Stats.Error)
}

// BoundMode returns the mode of the IQR filter.
func (r *Recipe) BoundMode() (stat.BoundMode, error) {
	if r.Filters.IQR == nil {
		return stat.Symmetric, nil
	}
	switch r.Filters.IQR.Mode {
	case "", "symmetric":
		return stat.Symmetric, nil
	case "zero-floor", "zero_floor":
		return stat.ZeroFloor, nil
	}
	return stat.Symmetric, fmt.Errorf("iqr mode must be symmetric or zero-floor, not %q", r.Filters.IQR.Mode)
}

// Delimiter returns the field separator of the input file.
func (r *Recipe) Delimiter() rune {
	for _, c := range r.Input.Delimiter {
		return c
	}
	return ','
}

// sectionComments annotate the template written by WriteTemplate.
var sectionComments = map[string]string{
	"input":   "The data file, index_col drops a leading row index column.",
	"columns": "Column names must match the header of the file exactly.",
	"filters": "Applied in the order match, iqr, exclude.",
	"order":   "Categories not listed here are not drawn.",
	"style":   "Colors are #rrggbb or names like gray80.",
	"output":  "Width and height in inch. Without file the name is derived from the input.",
}

// WriteTemplate writes the defaults for kind as commented YAML to w.
func WriteTemplate(w io.Writer, kind Kind) error {
	var doc yaml.Node
	if err := doc.Encode(Defaults(kind)); err != nil {
		return err
	}
	doc.HeadComment = fmt.Sprintf("qplot recipe for a %s chart", kind)
	if doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if c, ok := sectionComments[doc.Content[i].Value]; ok {
				doc.Content[i].HeadComment = c
			}
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
