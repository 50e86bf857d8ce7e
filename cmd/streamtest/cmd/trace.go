package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/streamtest/datarecording"
	"github.com/sarchlab/streamtest/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace [database]",
	Short: "Print the tasks stored in a trace database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		path := strings.TrimSuffix(args[0], ".sqlite3")

		_, err := os.Stat(path + ".sqlite3")
		if err != nil {
			fail("Error: %v", err)
			return
		}

		reader := datarecording.NewReader(path)
		defer reader.Close()

		err = printTrace(cmd.Context(), cmd.OutOrStdout(), reader)
		if err != nil {
			fail("Error: %v", err)
		}
	},
}

func printTrace(
	ctx context.Context,
	w io.Writer,
	reader datarecording.DataReader,
) error {
	reader.MapTable(tracing.TaskTable, tracing.TaskEntry{})
	reader.MapTable(tracing.DrainTable, tracing.DrainEntry{})

	tasks, _, err := reader.Query(ctx, tracing.TaskTable,
		datarecording.QueryParams{OrderBy: "Step"})
	if err != nil {
		return err
	}

	for _, t := range tasks {
		task := t.(*tracing.TaskEntry)

		name := task.Name
		if name == "" {
			name = "-"
		}

		fmt.Fprintf(w, "%d, #%d, %s\n", task.Time, task.Seq, name)
	}

	drains, _, err := reader.Query(ctx, tracing.DrainTable,
		datarecording.QueryParams{OrderBy: "Drain"})
	if err != nil {
		return err
	}

	for _, d := range drains {
		drain := d.(*tracing.DrainEntry)
		fmt.Fprintf(w, "drain %d idle @ %d after %d tasks\n",
			drain.Drain, drain.EndTime, drain.NumTasks)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(traceCmd)
}
