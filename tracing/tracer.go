// Package tracing records the tasks that a scheduler runs into a
// DataRecorder, so that a drain can be inspected after the test.
package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/streamtest/datarecording"
	"github.com/sarchlab/streamtest/timing"
)

const (
	// TaskTable is the table that stores one row per executed task.
	TaskTable = "trace_tasks"

	// DrainTable is the table that stores one row per drain that left the
	// scheduler idle.
	DrainTable = "trace_drains"
)

// TaskEntry is a row of TaskTable.
type TaskEntry struct {
	Step int
	Time int64
	Seq  uint64
	Name string
}

// DrainEntry is a row of DrainTable.
type DrainEntry struct {
	Drain    int
	EndTime  int64
	NumTasks int
}

// TaskTracer is a hook that stores every task run by a scheduler.
type TaskTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	startTime, endTime timing.VTime

	step       int
	drain      int
	drainTasks int
}

// NewTaskTracer creates a TaskTracer that writes into dataRecorder. The
// buffered rows are flushed when the program exits through atexit.
func NewTaskTracer(dataRecorder datarecording.DataRecorder) *TaskTracer {
	dataRecorder.CreateTable(TaskTable, TaskEntry{})
	dataRecorder.CreateTable(DrainTable, DrainEntry{})

	t := &TaskTracer{
		backend: dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits the traced tasks to the ones that run between
// startTime and endTime, both included. An endTime of 0 means no upper bound.
func (t *TaskTracer) SetTimeRange(startTime, endTime timing.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// Func records the task before it runs and the drain when the scheduler
// becomes idle.
func (t *TaskTracer) Func(ctx timing.HookCtx) {
	switch ctx.Pos {
	case timing.HookPosBeforeTask:
		t.traceTask(ctx.Now, ctx.Task)
	case timing.HookPosIdle:
		t.traceDrain(ctx.Now)
	}
}

func (t *TaskTracer) traceTask(now timing.VTime, task *timing.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now < t.startTime {
		return
	}

	if t.endTime > 0 && now > t.endTime {
		return
	}

	t.backend.InsertData(TaskTable, TaskEntry{
		Step: t.step,
		Time: int64(now),
		Seq:  task.Seq,
		Name: task.Name,
	})

	t.step++
	t.drainTasks++
}

func (t *TaskTracer) traceDrain(now timing.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(DrainTable, DrainEntry{
		Drain:    t.drain,
		EndTime:  int64(now),
		NumTasks: t.drainTasks,
	})

	t.drain++
	t.drainTasks = 0
}

// Terminate writes the buffered rows.
func (t *TaskTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
