package source

import (
	"slices"

	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// Builder can help building Sources.
//
// The schedule may be given in any order. Events are emitted by time, and
// events sharing a time keep the order in which they were added. Build panics
// if the schedule holds anything after its first completion.
type Builder[T any] struct {
	scheduler *timing.Scheduler
	events    []ScheduledEvent[T]
}

// MakeBuilder creates a Builder with an empty schedule.
func MakeBuilder[T any]() Builder[T] {
	return Builder[T]{}
}

// WithScheduler sets the scheduler that drives the source.
func (b Builder[T]) WithScheduler(s *timing.Scheduler) Builder[T] {
	b.scheduler = s
	return b
}

// WithEvents appends scheduled events.
func (b Builder[T]) WithEvents(events ...ScheduledEvent[T]) Builder[T] {
	b.events = append(slices.Clone(b.events), events...)
	return b
}

// WithValue appends a value emitted at t.
func (b Builder[T]) WithValue(t timing.VTime, v T) Builder[T] {
	return b.WithEvents(At(t, stream.Value(v)))
}

// WithFinish appends a normal completion at t.
func (b Builder[T]) WithFinish(t timing.VTime) Builder[T] {
	return b.WithEvents(At(t, stream.Finish[T]()))
}

// WithFailure appends a failed completion at t.
func (b Builder[T]) WithFailure(t timing.VTime, err error) Builder[T] {
	return b.WithEvents(At(t, stream.Fail[T](err)))
}

// Build creates the Source.
func (b Builder[T]) Build(name string) *Source[T] {
	return newSource(name, b.scheduler, b.events)
}
