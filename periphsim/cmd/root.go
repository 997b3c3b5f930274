// Package cmd provides the command-line interface of the periphsim tool.
package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "periphsim",
	Short: "Periphsim runs cycle-accurate peripheral models and summarizes " +
		"the traces they record.",
	Long: `Periphsim hosts blackbox models of serial peripherals on a ` +
		`two-phase signal engine. The run command drives a scripted exchange ` +
		`against an I2C target controller and two SPI-NOR flash models; the ` +
		`report command summarizes a recorded trace database.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		applyEnvOverrides(cmd)
	},
}

// applyEnvOverrides fills flags that were not given on the command line from
// PERIPHSIM_* environment variables, optionally loaded from a .env file in
// the working directory. A flag named --trace-db maps to PERIPHSIM_TRACE_DB.
func applyEnvOverrides(cmd *cobra.Command) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var envErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		key := "PERIPHSIM_" +
			strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		value, ok := os.LookupEnv(key)
		if !ok {
			return
		}

		if err := cmd.Flags().Set(f.Name, value); err != nil && envErr == nil {
			envErr = err
		}
	})

	if envErr != nil {
		log.Fatalf("Error applying environment overrides: %v", envErr)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
