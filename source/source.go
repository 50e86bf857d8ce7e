// Package source provides a publisher that replays a fixed schedule of events
// through a virtual clock.
package source

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// ScheduledEvent is an event together with the virtual time it is emitted at.
type ScheduledEvent[T any] struct {
	Time  timing.VTime
	Event stream.Event[T]
}

// At pairs an event with a virtual time.
func At[T any](t timing.VTime, e stream.Event[T]) ScheduledEvent[T] {
	return ScheduledEvent[T]{Time: t, Event: e}
}

// Source is a publisher that emits a fixed schedule. Each subscription
// registers one task per event with the scheduler once it receives its first
// request, so nothing is emitted until the scheduler runs. Demand is accepted
// but never limits the emission.
type Source[T any] struct {
	name      string
	scheduler *timing.Scheduler
	events    []ScheduledEvent[T]
}

// New creates a Source named "source". See Builder for the validation rules.
func New[T any](
	scheduler *timing.Scheduler,
	events []ScheduledEvent[T],
) *Source[T] {
	return MakeBuilder[T]().
		WithScheduler(scheduler).
		WithEvents(events...).
		Build("source")
}

func newSource[T any](
	name string,
	scheduler *timing.Scheduler,
	events []ScheduledEvent[T],
) *Source[T] {
	if scheduler == nil {
		panic(fmt.Sprintf("source %s: scheduler is not set", name))
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b ScheduledEvent[T]) int {
		return cmp.Compare(a.Time, b.Time)
	})

	mustNotEmitAfterCompletion(name, sorted)

	return &Source[T]{
		name:      name,
		scheduler: scheduler,
		events:    sorted,
	}
}

func mustNotEmitAfterCompletion[T any](name string, sorted []ScheduledEvent[T]) {
	for i, e := range sorted {
		if !e.Event.IsCompletion() || i == len(sorted)-1 {
			continue
		}

		next := sorted[i+1]
		panic(fmt.Sprintf(
			"source %s: %s event @ %d follows the completion @ %d",
			name, next.Event.Kind(), next.Time, e.Time,
		))
	}
}

// Name returns the name of the source.
func (s *Source[T]) Name() string {
	return s.name
}

// Events returns the schedule in emission order.
func (s *Source[T]) Events() []ScheduledEvent[T] {
	return slices.Clone(s.events)
}

// Subscribe attaches a subscriber.
func (s *Source[T]) Subscribe(sub stream.Subscriber[T]) {
	ss := &subscription[T]{
		source: s,
		sub:    sub,
	}

	sub.OnSubscribe(ss)
}

type subscription[T any] struct {
	source    *Source[T]
	sub       stream.Subscriber[T]
	activate  sync.Once
	cancelled atomic.Bool
}

// Request registers the schedule on the first call. The amount is ignored.
func (ss *subscription[T]) Request(stream.Demand) {
	ss.activate.Do(ss.register)
}

func (ss *subscription[T]) register() {
	for _, e := range ss.source.events {
		evt := e.Event
		ss.source.scheduler.Schedule(timing.Task{
			Time:   e.Time,
			Name:   ss.source.name + "." + evt.Kind().String(),
			Action: func() { ss.deliver(evt) },
		})
	}
}

func (ss *subscription[T]) deliver(evt stream.Event[T]) {
	if ss.cancelled.Load() {
		return
	}

	evt.Deliver(ss.sub)
}

// Cancel prevents the tasks that have not run yet from delivering.
func (ss *subscription[T]) Cancel() {
	ss.cancelled.Store(true)
}

// Drive runs the scheduler that emits the schedule.
func (ss *subscription[T]) Drive() {
	ss.source.scheduler.Run()
}
