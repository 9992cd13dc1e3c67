package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vialang/via/compiler"
)

var (
	genApp     string
	genOut     string
	genIR      string
	genModule  string
	genWorkers int
	genDryRun  bool
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Regenerate the output module from the definitions",
	Long: `Regenerate the Go backend and TypeScript declarations.

The output root is replaced in a single atomic swap: either the whole
regenerated tree lands or the previous one stays. Ejected files are
never rewritten.

Examples:
  via gen
  via gen --dry-run
  via gen --module example.com/blogapp --out build/gen`,
	RunE: runGen,
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVar(&genApp, "app", "", "definitions directory (overrides config)")
	genCmd.Flags().StringVar(&genOut, "out", "", "output root (overrides config)")
	genCmd.Flags().StringVar(&genIR, "ir", "", "IR snapshot path, or 'none' (overrides config)")
	genCmd.Flags().StringVar(&genModule, "module", "", "generated module path (overrides config)")
	genCmd.Flags().IntVar(&genWorkers, "workers", 0, "parallel workers (overrides config)")
	genCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "list the files that would be written without writing")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genApp != "" {
		cfg.App = genApp
	}
	if genOut != "" {
		cfg.Out = genOut
	}
	if genIR != "" {
		cfg.IR = genIR
	}
	if genModule != "" {
		cfg.Module = genModule
	}
	if genWorkers > 0 {
		cfg.Workers = genWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ccfg := compilerConfig(cfg, newLogger(cfg.Log))
	ccfg.DryRun = genDryRun

	res, err := compiler.Generate(ctx, ccfg)
	if err != nil {
		return err
	}

	if res.DryRun {
		fmt.Printf("Dry run: %d file(s) would be written into %s\n", len(res.Files), cfg.Out)
		for _, f := range res.Files {
			fmt.Printf("  - %s\n", f)
		}
		return nil
	}

	fmt.Printf("Generated %d resource(s) into %s\n", len(res.Resources), cfg.Out)
	for _, name := range res.Resources {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Printf("%d file(s) written\n", len(res.Files))
	return nil
}
