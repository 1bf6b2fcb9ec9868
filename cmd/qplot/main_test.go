package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vdobler/qplot"
	"github.com/vdobler/qplot/internal/config"
)

func testCmd() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestRunChart(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()

	lines := []string{"Tissue,Treatment,Log_Copies"}
	for _, tissue := range []string{"mLN", "PeyersPatch", "Colon"} {
		for j, treatment := range []string{"MHV-Y", "MHV-Y_dHE"} {
			for rep := 0; rep < 5; rep++ {
				lines = append(lines, fmt.Sprintf("%s,%s,%g", tissue, treatment, 2+float64(j)+0.3*float64(rep)))
			}
		}
	}
	csv := filepath.Join(dir, "violin.csv")
	require.NoError(t, os.WriteFile(csv, []byte(strings.Join(lines, "\n")), 0644))

	recipe := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(recipe, []byte("kind: violin\ninput: {index_col: false}\n"), 0644))

	cmd, out := testCmd()
	flags := &chartFlags{recipe: recipe, out: filepath.Join(dir, "violin.svg")}
	require.NoError(t, runChart(cmd, config.Violin, flags, []string{csv}))
	assert.Equal(t, flags.out+"\n", out.String())
	assert.FileExists(t, flags.out)

	cmd, _ = testCmd()
	flags = &chartFlags{recipe: recipe}
	err := runChart(cmd, config.Bar, flags, []string{csv})
	assert.ErrorIs(t, err, config.ErrInvalidRecipe, "recipe is for violins")

	cmd, _ = testCmd()
	flags = &chartFlags{recipe: recipe, format: "gif"}
	err = runChart(cmd, config.Violin, flags, []string{csv})
	assert.ErrorIs(t, err, config.ErrInvalidRecipe)
}

func TestInitCmd(t *testing.T) {
	cmd, out := testCmd()
	require.NoError(t, runInit(cmd, []string{"heatmap"}))
	r, err := config.Read(strings.NewReader(out.String()), "")
	require.NoError(t, err)
	assert.Equal(t, config.Heatmap, r.Kind)
	assert.Equal(t, "#bb334c", r.Style.TopColor)

	initOut = filepath.Join(t.TempDir(), "bar.yaml")
	defer func() { initOut = "" }()
	require.NoError(t, runInit(cmd, []string{"bar"}))
	r, err = config.Load(initOut, "")
	require.NoError(t, err)
	assert.Equal(t, config.Bar, r.Kind)

	assert.Error(t, runInit(cmd, []string{"pie"}))
}

func TestOutnameCmd(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		outnameFlags.plotType, outnameFlags.format = "Plot", "svg"
		outnameFlags.title, outnameFlags.dir = false, ""
	}()

	cmd, out := testCmd()
	outnameFlags.plotType, outnameFlags.format = "Heatmap", "svg"
	require.NoError(t, runOutname(cmd, []string{"data.csv"}))
	assert.Equal(t, cwd+"/data_ImageHeatmap.svg\n", out.String())

	cmd, out = testCmd()
	outnameFlags.plotType, outnameFlags.format = "LinePlot", "png"
	outnameFlags.title, outnameFlags.dir = true, "generated_images"
	require.NoError(t, runOutname(cmd, []string{"Foo"}))
	assert.Equal(t, cwd+"/generated_images/Foo_ImageLinePlot.png\n", out.String())

	cmd, _ = testCmd()
	cmd.SetIn(strings.NewReader("data.csv"))
	err = runOutname(cmd, []string{"-"})
	require.ErrorIs(t, err, qplot.ErrBadFilename)

	msg := &bytes.Buffer{}
	assert.Equal(t, 1, report(msg, err))
	assert.Equal(t, "*strings.Reader has no path-splitting behaviour. "+
		"Double check that the filename passed is a string.\n", msg.String())

	cmd, _ = testCmd()
	outnameFlags.format = "bmp"
	err = runOutname(cmd, []string{"data.csv"})
	assert.ErrorIs(t, err, qplot.ErrUnsupportedFormat)
}

func TestExecute(t *testing.T) {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"outname", "../datasets/x.csv", "--type", "Violin", "--format", "pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		outnameFlags.plotType, outnameFlags.format = "Plot", "svg"
	}()
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.True(t, strings.HasSuffix(out.String(), "/x_ImageViolin.pdf\n"), out.String())
	assert.NotNil(t, logger)

	rootCmd.SetArgs([]string{"pie"})
	assert.Error(t, rootCmd.Execute())
}
