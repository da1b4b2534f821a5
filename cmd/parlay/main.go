// Command parlay is the CLI front end for the compiler pipeline: it
// parses a .prl file's declarations and control program, runs the
// specialize -> check -> phase-analyze pipeline over every declared
// kernel, and either reports the result (`check`) or drives the
// recorded control program to completion through lower.Driver (`run`).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parlay/cmd/parlay/commands"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "parlay",
		Short: "parlay - a relation/field/kernel compiler pipeline",
		Long: `parlay compiles and runs .prl programs: relation and field
declarations, kernels written against a single relation row, and a
control program that launches them.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("parlay v%s\n", version)
		},
	})
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewRunCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
