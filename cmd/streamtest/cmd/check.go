package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/streamtest/script"
)

var checkCmd = &cobra.Command{
	Use:   "check [script]",
	Short: "Check that a script is valid.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		s, err := script.Load(args[0])
		if err != nil {
			fail("Error: %v", err)
			return
		}

		printSummary(cmd.OutOrStdout(), s)
	},
}

func printSummary(w io.Writer, s *script.Script) {
	values := 0
	ending := "never completes"

	for _, e := range s.Events {
		switch {
		case e.Finish:
			ending = fmt.Sprintf("finishes @ %d", e.Time)
		case e.Fail != "":
			ending = fmt.Sprintf("fails @ %d", e.Time)
		default:
			values++
		}
	}

	fmt.Fprintf(w, "%s: %d values, %s\n", s.Name, values, ending)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
