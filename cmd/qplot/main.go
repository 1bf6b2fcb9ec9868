// Command qplot draws line, heatmap, violin and bar charts from CSV files
// as described by YAML recipes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vdobler/qplot"
	"github.com/vdobler/qplot/internal/config"
)

var (
	// Global flags
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qplot",
	Short: "Draw statistical charts from CSV files",
	Long: `qplot reads a CSV file, filters it and draws one of four charts:

  line     mean per group over time with error band and observations
  heatmap  mean per two categories (or per plate well) in a light palette
  violin   densities per category and group with a swarm of observations
  bar      means with error bars, observations and significance brackets

The settings of a chart live in a YAML recipe; "qplot init <kind>" prints
one with the defaults. QPLOT_FORMAT, QPLOT_OUTPUT_DIR, QPLOT_DPI and
QPLOT_DEBUG override the recipe, command line flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	for _, kind := range config.Kinds {
		rootCmd.AddCommand(newChartCmd(kind))
	}
	rootCmd.AddCommand(initCmd, outnameCmd)
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// badFilenameHint completes the diagnostic for names which are no strings.
const badFilenameHint = "Double check that the filename passed is a string."

// report prints err to w and returns the exit code.
func report(w io.Writer, err error) int {
	msg := err.Error()
	if errors.Is(err, qplot.ErrBadFilename) {
		msg = strings.TrimSuffix(msg, ": "+qplot.ErrBadFilename.Error()) + ". " + badFilenameHint
	}
	fmt.Fprintln(w, msg)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(report(os.Stderr, err))
	}
}
