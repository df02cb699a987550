package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// valuesetCmd represents the valueset command
var valuesetCmd = &cobra.Command{
	Use:   "valueset",
	Short: "Manage FHIR ValueSets",
	Long:  `Load FHIR ValueSet resources into the database.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, "error: Command 'valueset' requires a subcommand (load)")
		fmt.Fprintln(os.Stderr)
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(valuesetCmd)
}
