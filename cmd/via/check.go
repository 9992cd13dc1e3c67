package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vialang/via/compiler"
)

var checkApp string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse and resolve the definitions without writing",
	Long: `Parse every definition source and resolve the batch, reporting
syntax, resolution and consistency errors. Nothing is written.

Examples:
  via check
  via check --app definitions`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkApp, "app", "", "definitions directory (overrides config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkApp != "" {
		cfg.App = checkApp
	}

	names, err := compiler.Check(context.Background(), compilerConfig(cfg, newLogger(cfg.Log)))
	if err != nil {
		return err
	}

	fmt.Printf("Parsed %d resource(s)\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("No errors found.")
	return nil
}
