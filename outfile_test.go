package qplot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringerName struct{ s string }

func (n stringerName) String() string { return n.s }

func fixedWd(t *testing.T, dir string) {
	t.Helper()
	old := getwd
	getwd = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getwd = old })
}

func TestOutputFile(t *testing.T) {
	fixedWd(t, "/work")

	tests := []struct {
		name     interface{}
		plotType string
		ext      string
		opts     []OutputOption
		want     string
	}{
		{"data.csv", "Heatmap", "svg", nil, "/work/data_ImageHeatmap.svg"},
		{"../datasets/combined_qPCR_kn.csv", "Heatmap", "svg", nil, "/work/combined_qPCR_kn_ImageHeatmap.svg"},
		{"my.csv.csv", "Violin", "png", nil, "/work/my.csv_ImageViolin.png"},
		{"results.csv.bak", "Bar", "pdf", nil, "/work/results.csv.bak_ImageBar.pdf"},
		{"/work/plain", "Bar", "svg", nil, "/work/plain_ImageBar.svg"},
		{"Foo", "Heatmap", "png", []OutputOption{TitleBased()}, "/work/Foo_ImageHeatmap.png"},
		{"MHVY_fixed", "LinePlot", "svg", []OutputOption{TitleBased(), InDir("generated_images")},
			"/work/generated_images/MHVY_fixed_ImageLinePlot.svg"},
		{"x/y/file.csv", "Violin", "svg", []OutputOption{WithInfix("_")}, "/work/file_Violin.svg"},
		{stringerName{"data.csv"}, "Bar", "jpg", nil, "/work/data_ImageBar.jpg"},
	}

	for i, tc := range tests {
		got, err := OutputFile(tc.name, tc.plotType, tc.ext, tc.opts...)
		require.NoError(t, err, "%d", i)
		assert.Equal(t, tc.want, got, "%d: %v", i, tc.name)
	}
}

func TestOutputFileReplacesOnlyTrailingSuffixOnce(t *testing.T) {
	fixedWd(t, "/w")
	got, err := OutputFile("a.csv.b.csv", "P", "svg")
	require.NoError(t, err)
	assert.Equal(t, "/w/a.csv.b_ImageP.svg", got)
}

func TestOutputFileBadName(t *testing.T) {
	for _, name := range []interface{}{42, nil, []string{"data.csv"}, struct{}{}} {
		_, err := OutputFile(name, "Heatmap", "svg")
		assert.ErrorIs(t, err, ErrBadFilename, "%v", name)
	}
}

func TestOutputFileBadFormat(t *testing.T) {
	_, err := OutputFile("data.csv", "Heatmap", "gif")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("/a/b/plot.PNG")
	require.NoError(t, err)
	assert.Equal(t, "png", f)

	_, err = FormatOf("plot")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
