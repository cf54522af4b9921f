package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shoald",
	Short: "Storage appliance management daemon",
	Long: `shoald manages storage appliance configuration through typed,
schema-validated RPC methods.

Every method declares the schemas of its arguments; schemas are declared
by name, resolved once at startup, and validated on every call.

Quick start:
  shoald validate   # Check configuration and schema declarations
  shoald serve      # Start the daemon

Inspection:
  shoald schemas    # Print registered schema documents`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "shoald.yaml", "config file path")
}
