// Package cmd provides the command-line interface for streamtest.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streamtest",
	Short: "streamtest replays scheduled event scripts on a virtual clock.",
	Long: `streamtest replays scheduled event scripts on a virtual clock. ` +
		`It can check scripts, print the events a script emits together ` +
		`with their virtual times, and dump the task traces of a replay.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// fail logs the error and exits through atexit.
func fail(format string, args ...any) {
	log.Printf(format, args...)
	atexit.Exit(1)
}
