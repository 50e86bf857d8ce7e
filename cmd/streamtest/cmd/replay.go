package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/streamtest/config"
	"github.com/sarchlab/streamtest/datarecording"
	"github.com/sarchlab/streamtest/recording"
	"github.com/sarchlab/streamtest/script"
	"github.com/sarchlab/streamtest/timing"
	"github.com/sarchlab/streamtest/tracing"
)

var (
	replayCount    int
	replayTraceDB  string
	replayLogTasks bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Replay a script and print the timed records.",
	Long: "`replay [script]` emits the events of the script on a virtual " +
		"clock and prints every record as (time, event). Without --count, " +
		"the replay waits for the completion.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		cfg, err := config.Load()
		if err != nil {
			fail("Error: %v", err)
			return
		}

		if cmd.Flags().Changed("trace") {
			cfg.TraceDB = replayTraceDB
		}

		if cmd.Flags().Changed("log-tasks") {
			cfg.LogTasks = replayLogTasks
		}

		s, err := script.Load(args[0])
		if err != nil {
			fail("Error: %v", err)
			return
		}

		err = replay(cmd, cfg, s)
		if err != nil {
			fail("Error: %v", err)
		}
	},
}

func replay(cmd *cobra.Command, cfg config.Config, s *script.Script) error {
	scheduler := timing.NewScheduler()

	if cfg.LogTasks {
		scheduler.AcceptHook(
			timing.NewTaskLogger(log.New(os.Stderr, "task: ", 0)))
	}

	if cfg.TraceDB != "" {
		recorder := datarecording.New(cfg.TraceDB)
		defer recorder.Close()

		tracer := tracing.NewTaskTracer(recorder)
		defer tracer.Terminate()

		scheduler.AcceptHook(tracer)
	}

	src, err := s.Source(scheduler)
	if err != nil {
		return err
	}

	var r *recording.Timed[any]
	if replayCount > 0 {
		r = recording.RecordTimedN[any](src, scheduler, replayCount)
	} else {
		r = recording.RecordTimed[any](src, scheduler)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.WaitTimeout)
	defer cancel()

	waitErr := r.WaitContext(ctx)

	for _, record := range r.TimedRecords() {
		fmt.Fprintln(cmd.OutOrStdout(), record)
	}

	return waitErr
}

func init() {
	replayCmd.Flags().IntVar(&replayCount, "count", 0,
		"stop after this many records instead of waiting for the completion")
	replayCmd.Flags().StringVar(&replayTraceDB, "trace", "",
		"write the executed tasks into this SQLite database")
	replayCmd.Flags().BoolVar(&replayLogTasks, "log-tasks", false,
		"log every task before it runs")

	rootCmd.AddCommand(replayCmd)
}
