package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vialang/via/compiler"
	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "via",
	Short: "Compile resource definitions into a Go backend and TypeScript types",
	Long: `via compiles .via resource definitions into a runnable Go backend
module and matching TypeScript type declarations.

Quick start:
  via check            # Parse and resolve the definitions
  via gen              # Regenerate the output module
  via gen --dry-run    # Show what would be written

Configuration lives in via.yaml next to your definitions. Every value
can be overridden with flags or VIA_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
// Diagnostics are rendered one per line, the way compilers do.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var list *diagnostic.List
		if errors.As(err, &list) {
			fmt.Fprintln(os.Stderr, list.Format())
			fmt.Fprintf(os.Stderr, "%d error(s)\n", list.Len())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")
}

// loadConfig loads via.yaml. A missing file is only an error when the
// user pointed at one explicitly.
func loadConfig() (*config.Config, error) {
	if rootCmd.PersistentFlags().Changed("config") {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(cfgFile)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(out).With().Timestamp().Logger().Level(level)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}

func compilerConfig(cfg *config.Config, logger zerolog.Logger) compiler.Config {
	return compiler.Config{
		RootDir: cfg.Root,
		AppDir:  cfg.App,
		OutDir:  cfg.Out,
		IRPath:  cfg.SnapshotPath(),
		Module:  cfg.Module,
		Workers: cfg.Workers,
		Logger:  logger,
	}
}
