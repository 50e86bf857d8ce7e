package timing

import (
	"log"
)

// TaskLogger is a hook that prints every task right before it runs.
type TaskLogger struct {
	*log.Logger
}

// NewTaskLogger returns a TaskLogger that writes into logger.
func NewTaskLogger(logger *log.Logger) *TaskLogger {
	h := new(TaskLogger)
	h.Logger = logger

	return h
}

// Func writes the task information into the logger.
func (h *TaskLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeTask {
		return
	}

	name := ctx.Task.Name
	if name == "" {
		name = "-"
	}

	h.Printf("%d, #%d, %s", ctx.Now, ctx.Task.Seq, name)
}
