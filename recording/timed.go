package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// TimedRecord is a record paired with the virtual time it was captured at.
type TimedRecord[T any] struct {
	Time  timing.VTime
	Event stream.Event[T]
}

// At pairs an event with a virtual time.
func At[T any](t timing.VTime, e stream.Event[T]) TimedRecord[T] {
	return TimedRecord[T]{Time: t, Event: e}
}

func (r TimedRecord[T]) String() string {
	return fmt.Sprintf("(%d, %s)", r.Time, r.Event)
}

// Timed is a Recorder that also stamps every record with the current time of
// a scheduler. Waiting on a Timed recorder runs the scheduler first.
type Timed[T any] struct {
	*Recorder[T]

	scheduler *timing.Scheduler
}

// NewTimed creates a Timed recorder that records until the stream completes.
func NewTimed[T any](scheduler *timing.Scheduler) *Timed[T] {
	return newTimed[T](scheduler, 0)
}

// NewTimedWithCount creates a Timed recorder that stops after n records.
func NewTimedWithCount[T any](scheduler *timing.Scheduler, n int) *Timed[T] {
	if n <= 0 {
		panic(fmt.Sprintf(
			"recording: the number of records must be positive, got %d", n))
	}

	return newTimed[T](scheduler, n)
}

func newTimed[T any](scheduler *timing.Scheduler, n int) *Timed[T] {
	if scheduler == nil {
		panic("recording: a timed recorder requires a scheduler")
	}

	return &Timed[T]{
		Recorder:  newRecorder[T](n, scheduler),
		scheduler: scheduler,
	}
}

// TimedRecords returns the records with their capture times.
func (r *Timed[T]) TimedRecords() []TimedRecord[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.times) != len(r.records) {
		panic(fmt.Sprintf(
			"recording: internal consistency error, %d times for %d records",
			len(r.times), len(r.records),
		))
	}

	timed := make([]TimedRecord[T], len(r.records))
	for i, e := range r.records {
		timed[i] = TimedRecord[T]{Time: r.times[i], Event: e}
	}

	return timed
}

// WaitContext runs the scheduler, then waits like Recorder.WaitContext.
func (r *Timed[T]) WaitContext(ctx context.Context) error {
	return r.wait(ctx, r.drive)
}

// Wait runs the scheduler, then waits like Recorder.Wait.
func (r *Timed[T]) Wait(t TestingT, timeout time.Duration) {
	t.Helper()

	r.waitAndReport(t, timeout, r.drive)
}

// WaitAndCollect runs the scheduler, waits, and returns the records.
func (r *Timed[T]) WaitAndCollect(
	t TestingT,
	timeout time.Duration,
) []stream.Event[T] {
	t.Helper()

	r.waitAndReport(t, timeout, r.drive)

	return r.Records()
}

// WaitAndCollectTimed runs the scheduler, waits, and returns the timed
// records.
func (r *Timed[T]) WaitAndCollectTimed(
	t TestingT,
	timeout time.Duration,
) []TimedRecord[T] {
	t.Helper()

	r.waitAndReport(t, timeout, r.drive)

	return r.TimedRecords()
}

func (r *Timed[T]) drive() {
	r.scheduler.Run()
	r.driveSubscription()
}
