// Package timing provides a virtual clock that runs scheduled tasks in time
// order, synchronously, on the goroutine that drives it.
package timing

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// TimeTeller can be used to get the current virtual time.
type TimeTeller interface {
	CurrentTime() VTime
}

// A Scheduler keeps a virtual clock and a queue of pending tasks. Nothing
// runs until Run or RunUntil is called. Tasks run one after another on the
// calling goroutine; a task may schedule more tasks, which join the same
// drain.
type Scheduler struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTime

	queueLock sync.Mutex
	queue     *taskQueue
	nextSeq   uint64

	running atomic.Bool
}

// NewScheduler creates a Scheduler whose clock shows 0.
func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: newTaskQueue(),
	}
}

// Schedule registers a task and returns the sequence number assigned to it.
// The task never runs synchronously inside Schedule.
func (s *Scheduler) Schedule(t Task) uint64 {
	if t.Action == nil {
		panic(fmt.Sprintf("timing: task %q has no action", t.Name))
	}

	s.queueLock.Lock()
	t.Seq = s.nextSeq
	s.nextSeq++
	s.queue.Push(&t)
	s.queueLock.Unlock()

	return t.Seq
}

// ScheduleNow registers action to run at the current time, after every task
// already registered for the current time.
func (s *Scheduler) ScheduleNow(action func()) {
	s.ScheduleAfter(s.Now(), action)
}

// ScheduleAfter registers action to run when the clock reaches t. A time
// earlier than the current time runs as soon as possible and does not move
// the clock backwards.
func (s *Scheduler) ScheduleAfter(t VTime, action func()) {
	s.Schedule(Task{Time: t, Action: action})
}

// ScheduleDelayed registers action to run d ticks after the current time.
func (s *Scheduler) ScheduleDelayed(d VTime, action func()) {
	s.ScheduleAfter(s.Now()+d, action)
}

// SchedulePeriodic is not supported and always panics.
func (s *Scheduler) SchedulePeriodic(start, interval VTime, action func()) {
	panic(fmt.Sprintf(
		"timing: periodic tasks are not supported (start %d, interval %d)",
		start, interval,
	))
}

// Run executes pending tasks in (Time, Seq) order until none is left. Calling
// Run from inside a task returns immediately; the outer drain picks up
// whatever the task scheduled.
func (s *Scheduler) Run() {
	s.drain(func(*Task) bool { return true })
}

// RunUntil executes the pending tasks whose time is not later than t, then
// moves the clock to t if it is behind. Called from inside a task, it returns
// immediately and leaves the clock alone.
func (s *Scheduler) RunUntil(t VTime) {
	if !s.drain(func(next *Task) bool { return next.Time <= t }) {
		return
	}

	if s.Now() < t {
		s.writeNow(t)
	}
}

// drain returns false if another drain is in progress.
func (s *Scheduler) drain(due func(next *Task) bool) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	defer s.running.Store(false)

	executed := 0
	for {
		task := s.nextTask(due)
		if task == nil {
			break
		}

		s.execute(task)
		executed++
	}

	if executed > 0 && s.Pending() == 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosIdle,
			Now:    s.Now(),
		})
	}

	return true
}

func (s *Scheduler) nextTask(due func(next *Task) bool) *Task {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	next := s.queue.Peek()
	if next == nil {
		return nil
	}

	if next.Time > s.Now() && !due(next) {
		return nil
	}

	return s.queue.Pop()
}

func (s *Scheduler) execute(task *Task) {
	if task.Time > s.Now() {
		s.writeNow(task.Time)
	}

	hookCtx := HookCtx{
		Domain: s,
		Pos:    HookPosBeforeTask,
		Now:    s.Now(),
		Task:   task,
	}
	s.InvokeHook(hookCtx)

	task.Action()

	hookCtx.Pos = HookPosAfterTask
	hookCtx.Now = s.Now()
	s.InvokeHook(hookCtx)
}

// Pending returns the number of tasks waiting to run.
func (s *Scheduler) Pending() int {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	return s.queue.Len()
}

// IsRunning returns true while a drain is in progress.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Now returns the current virtual time.
func (s *Scheduler) Now() VTime {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.now
}

// CurrentTime returns the current virtual time. It is the same as Now.
func (s *Scheduler) CurrentTime() VTime {
	return s.Now()
}

// SetNow moves the clock to t without running anything. The clock never moves
// backwards.
func (s *Scheduler) SetNow(t VTime) {
	now := s.Now()
	if t < now {
		panic(fmt.Sprintf(
			"timing: cannot move the clock backwards, now %d, requested %d",
			now, t,
		))
	}

	s.writeNow(t)
}

func (s *Scheduler) writeNow(t VTime) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}
