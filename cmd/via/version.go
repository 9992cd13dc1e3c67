package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vialang/via"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the via version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("via version " + via.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
