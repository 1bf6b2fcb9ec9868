package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vdobler/qplot"
	"github.com/vdobler/qplot/internal/charts"
	"github.com/vdobler/qplot/internal/config"
)

// chartFlags are the flags of the chart commands.
type chartFlags struct {
	recipe string
	out    string
	format string
}

func newChartCmd(kind config.Kind) *cobra.Command {
	flags := &chartFlags{}
	cmd := &cobra.Command{
		Use:   string(kind) + " [file.csv]",
		Short: fmt.Sprintf("Draw a %s chart", kind),
		Long: fmt.Sprintf(`Draws a %s chart from the CSV file given as argument or in the recipe.

The image is written to the working directory under a name derived
from the input file unless --out or output.file in the recipe is set.
The path of the written image is printed.`, kind),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, kind, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.recipe, "recipe", "r", "", "YAML recipe, defaults are used if empty")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file, format by extension")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "image format of derived output names")
	return cmd
}

func runChart(cmd *cobra.Command, kind config.Kind, flags *chartFlags, args []string) error {
	r, err := config.Load(flags.recipe, kind)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		r.Input.File = args[0]
	}
	if flags.out != "" {
		r.Output.File = flags.out
	}
	if flags.format != "" {
		r.Output.Format = flags.format
	}

	log := logger
	if r.Debug && !verbose {
		if log, err = newLogger(true); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := charts.Run(ctx, r, log)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

var initOut string

var initCmd = &cobra.Command{
	Use:   "init <kind>",
	Short: "Print a recipe with the defaults of a chart kind",
	Long: `Prints a commented YAML recipe holding the defaults of the given chart
kind (line, heatmap, violin or bar). Edit it and pass it with --recipe.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initOut, "out", "o", "", "write the recipe to this file instead of stdout")
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	kind, err := config.ParseKind(args[0])
	if err != nil {
		return err
	}
	if initOut == "" {
		return config.WriteTemplate(cmd.OutOrStdout(), kind)
	}
	file, err := os.Create(initOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return config.WriteTemplate(file, kind)
}

// outnameFlags are the flags of the outname command.
var outnameFlags struct {
	plotType string
	format   string
	title    bool
	dir      string
	infix    string
}

var outnameCmd = &cobra.Command{
	Use:   "outname <name>",
	Short: "Print the output file name derived from an input name",
	Long: `Prints the path an image derived from name would be written to.

By default name is a CSV file and its trailing ".csv" is replaced by
"_Image<type>.<format>". With --title the whole name is used as stem.
A name of "-" passes the standard input itself, which is not a name.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutname,
}

func init() {
	f := outnameCmd.Flags()
	f.StringVarP(&outnameFlags.plotType, "type", "t", "Plot", "plot type put into the name")
	f.StringVarP(&outnameFlags.format, "format", "f", "svg", "image format")
	f.BoolVar(&outnameFlags.title, "title", false, "name is a title, not a CSV file")
	f.StringVarP(&outnameFlags.dir, "dir", "d", "", "directory below the working directory")
	f.StringVar(&outnameFlags.infix, "infix", "", `replaces "_Image" in the name`)
}

func runOutname(cmd *cobra.Command, args []string) error {
	var name interface{} = args[0]
	if args[0] == "-" {
		name = cmd.InOrStdin()
	}
	var opts []qplot.OutputOption
	if outnameFlags.title {
		opts = append(opts, qplot.TitleBased())
	}
	if outnameFlags.dir != "" {
		opts = append(opts, qplot.InDir(outnameFlags.dir))
	}
	if outnameFlags.infix != "" {
		opts = append(opts, qplot.WithInfix(outnameFlags.infix))
	}
	path, err := qplot.OutputFile(name, outnameFlags.plotType, outnameFlags.format, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
