package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/qplot/stat"
)

func TestDefaultsAreValid(t *testing.T) {
	for _, kind := range Kinds {
		r := Defaults(kind)
		r.Input.File = "data.csv"
		assert.NoError(t, r.Validate(), "kind %s", kind)
	}

	bar := Defaults(Bar)
	assert.Equal(t, "outside", bar.Stats.BracketLoc)
	assert.Equal(t, 300, bar.Output.DPI)
	kind, err := bar.ErrorKind()
	require.NoError(t, err)
	assert.Equal(t, stat.SD, kind)

	violin := Defaults(Violin)
	assert.Equal(t, 7.0, *violin.Style.YMax)
	assert.Equal(t, 1.0, violin.Stats.Cut)

	assert.Equal(t, "generated_images", Defaults(Line).Output.Dir)
}

func TestRead(t *testing.T) {
	src := `
kind: bar
input:
  file: ../datasets/Intracellular.csv
columns:
  y: Value
filters:
  iqr:
    column: Value
    mode: zero-floor
  match: null
order:
  x: [1, 0, -1]
style:
  palette: ["#EDAB21", "gray80"]
`
	r, err := Read(strings.NewReader(src), "")
	require.NoError(t, err)
	assert.Equal(t, Bar, r.Kind)
	assert.Equal(t, "../datasets/Intracellular.csv", r.Input.File)
	assert.Equal(t, "log(MOI)", r.Columns.X, "default kept")
	assert.Equal(t, "Value", r.Columns.Y)
	assert.Nil(t, r.Filters.Match)
	assert.Equal(t, []string{"1", "0", "-1"}, r.Order.X)
	assert.Equal(t, []string{"WT", "KO"}, r.Order.Hue)
	mode, err := r.BoundMode()
	require.NoError(t, err)
	assert.Equal(t, stat.ZeroFloor, mode)
	assert.NoError(t, r.Validate())

	r, err = Read(strings.NewReader("input: {file: a.csv}"), Heatmap)
	require.NoError(t, err)
	assert.Equal(t, Heatmap, r.Kind)

	_, err = Read(strings.NewReader("kind: violin"), Bar)
	assert.ErrorIs(t, err, ErrInvalidRecipe)
	_, err = Read(strings.NewReader("input: {file: a.csv}"), "")
	assert.ErrorIs(t, err, ErrInvalidRecipe)
	_, err = Read(strings.NewReader("kind: pie"), "")
	assert.ErrorIs(t, err, ErrInvalidRecipe)
	_, err = Read(strings.NewReader("kind: [bar"), "")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("QPLOT_FORMAT", "pdf")
	t.Setenv("QPLOT_OUTPUT_DIR", "images")
	t.Setenv("QPLOT_DPI", "150")
	t.Setenv("QPLOT_DEBUG", "true")

	r, err := Load("", Violin)
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Output.Format)
	assert.Equal(t, "images", r.Output.Dir)
	assert.Equal(t, 150, r.Output.DPI)
	assert.True(t, r.Debug)

	t.Setenv("QPLOT_DPI", "many")
	_, err = Load("", Violin)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml", Bar)
	assert.Error(t, err)
	_, err = Load("", "")
	assert.ErrorIs(t, err, ErrInvalidRecipe)
}

func TestValidate(t *testing.T) {
	r := Defaults(Heatmap)
	r.Columns.Rows = ""
	r.Style.TopColor = "bordeaux"
	r.Style.Palette = []string{"#12"}
	r.Stats.Error = "ci95"
	r.Stats.BracketLoc = "above"
	r.Output.Format = "bmp"
	r.Filters.IQR.Mode = "lower"

	err := r.Validate()
	require.ErrorIs(t, err, ErrInvalidRecipe)
	for _, want := range []string{
		"no input file",
		"column rows is not set",
		`bad color "bordeaux"`,
		`bad palette color "#12"`,
		`not "ci95"`,
		"bracket_loc",
		`format "bmp"`,
		"iqr mode",
	} {
		assert.Contains(t, err.Error(), want)
	}

	wells := Defaults(Heatmap)
	wells.Input.File = "plate.csv"
	wells.Columns = Columns{Well: "Well Positions", Value: "Ct"}
	assert.NoError(t, wells.Validate())

	out := Defaults(Line)
	out.Input.File = "a.csv"
	out.Output.File = "plot.gif"
	assert.Error(t, out.Validate())
}

func TestDelimiter(t *testing.T) {
	r := Defaults(Line)
	assert.Equal(t, ',', r.Delimiter())
	r.Input.Delimiter = ";"
	assert.Equal(t, ';', r.Delimiter())
}

func TestWriteTemplate(t *testing.T) {
	for _, kind := range Kinds {
		buf := &bytes.Buffer{}
		require.NoError(t, WriteTemplate(buf, kind))
		assert.Contains(t, buf.String(), "# qplot recipe for a "+string(kind)+" chart")
		assert.Contains(t, buf.String(), "# Column names must match")

		got, err := Read(buf, "")
		require.NoError(t, err)
		if diff := cmp.Diff(Defaults(kind), got); diff != "" {
			t.Errorf("%s template does not round trip (-want +got):\n%s", kind, diff)
		}
	}
}

func TestPlotType(t *testing.T) {
	assert.Equal(t, "Heatmap", Heatmap.PlotType())
	assert.Equal(t, "LinePlot", Line.PlotType())
	k, err := ParseKind("violin")
	require.NoError(t, err)
	assert.Equal(t, "Violin", k.PlotType())
}
