package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/cmd/docforge/ui"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/observability"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitPartial     = 2
	ExitInterrupted = 130
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	logFormat string
)

// app holds what PersistentPreRunE builds for the command being run.
var app struct {
	cfg    *config.Config
	logger *observability.Logger
	ui     *ui.UI
}

var rootCmd = &cobra.Command{
	Use:   "docforge",
	Short: "DocForge - batch PDF processing with validation",
	Long: `DocForge runs OCR, optimization, merging, splitting and conversion over
single PDFs or whole folders. Parameters are validated and auto-corrected
before any work starts, one failing file never stops a batch, and every
batch ends with a report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return usageError(fmt.Errorf("load config: %w", err))
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return usageError(fmt.Errorf("invalid config: %w", err))
		}

		app.cfg = cfg
		app.logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Output:      os.Stderr,
			ServiceName: "docforge",
		})
		app.ui = ui.New(noColor, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitError, err: err}
}

// silentExit ends the process with code without printing anything more.
func silentExit(code int) error {
	return &exitError{code: code}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Interrupted")
		return ExitInterrupted
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitError
}
