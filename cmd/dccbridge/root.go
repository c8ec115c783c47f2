package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"caliper-hq/dccbridge/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dccbridge",
	Short: "dccbridge - calibration certificate conversion service",
	Long: `dccbridge converts proprietary calibration certificates into Digital
Calibration Certificates (DCC).

Source XML documents are mapped onto the DCC structure using declarative
JSON mapping profiles. One profile per certificate layout; the engine
itself knows nothing about any specific vendor format.

The result is emitted both as an intermediate DCC-JSON object and as a
DCC XML document with validation warnings for missing mandatory data.`,
	Version: Version,
}

// Execute runs the root command. Commands inherit a context that is
// canceled on SIGINT or SIGTERM.
func Execute() {
	if err := rootCmd.ExecuteContext(cli.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
