// Package main provides the confpapers CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/confpapers/internal/config"
	"github.com/matsen/confpapers/internal/loader"
	"github.com/matsen/confpapers/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// dataRootFlag overrides the configured data root when set
	dataRootFlag string
	// logModeFlag overrides the configured log mode when set
	logModeFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is on, so Cobra errors (unknown flags, bad args) land here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "confpapers",
	Short: "Load and query machine-learning conference paper tables",
	Long: `confpapers loads per-conference CSV tables of accepted papers
(NEURIPS/neurips_papers.csv, ICLR/iclr_papers.csv, ...) into validated records.

Malformed rows are skipped and reported; a conference that fails to load is
left out of multi-conference results and reported. Queries run against an
in-memory SQLite index built for each invocation; nothing is written to disk.

All commands output JSON by default for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dataRootFlag, "data-root", "", "Directory holding the conference folders (overrides "+config.EnvDataRoot+")")
	rootCmd.PersistentFlags().StringVar(&logModeFlag, "log", "", "Log mode: dev, prod or nop (overrides "+config.EnvLogMode+")")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration and applies flag overrides, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if dataRootFlag != "" {
		cfg.DataRoot = config.ExpandPath(dataRootFlag)
	}
	if logModeFlag != "" {
		cfg.LogMode = logModeFlag
	}
	return cfg
}

// mustNewLogger builds the logger for the configured mode, exits on error.
func mustNewLogger(cfg *config.Config) *zap.Logger {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return log
}

// mustNewLoader builds a loader from the effective configuration.
// With requireDataRoot, a missing or invalid data root exits with a config error.
// The caller should Sync the returned logger before returning.
func mustNewLoader(requireDataRoot bool, extra ...loader.Option) (*loader.Loader, *zap.Logger) {
	cfg := mustLoadConfig()
	log := mustNewLogger(cfg)

	if requireDataRoot {
		if err := cfg.ValidateDataRoot(); err != nil {
			exitWithDataRootError(err)
		}
	}

	opts := append(cfg.LoaderOptions(), loader.WithLogger(log))
	opts = append(opts, extra...)
	return loader.New(cfg.DataRoot, opts...), log
}

// exitWithDataRootError reports an unusable data root and exits with a
// config error.
func exitWithDataRootError(err error) {
	if errors.Is(err, config.ErrDataRootNotConfigured) {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	exitWithError(ExitConfigError, "%v", err)
}

// exitCodeFor maps a load error onto a process exit code.
func exitCodeFor(err error) int {
	switch loader.KindOf(err) {
	case loader.KindMissingConfiguration:
		return ExitConfigError
	case loader.KindNotFound, loader.KindParseFailure:
		return ExitDataError
	default:
		return ExitError
	}
}
