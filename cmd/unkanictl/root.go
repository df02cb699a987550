package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "unkanictl",
	Short: "Run and administer the unkani FHIR service",
	Long: `Run and administer the unkani FHIR service.

Configuration is read from unkani.yml in UNKANI_CONFIG_PATH (default /etc/unkani)
and the environment. A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.LoadEnvFile(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", envFile, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
