package recording

import (
	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// Record subscribes a new Recorder that records until pub completes.
func Record[T any](pub stream.Publisher[T]) *Recorder[T] {
	r := New[T]()
	pub.Subscribe(r)

	return r
}

// RecordN subscribes a new Recorder that stops after n records.
func RecordN[T any](pub stream.Publisher[T], n int) *Recorder[T] {
	r := NewWithCount[T](n)
	pub.Subscribe(r)

	return r
}

// RecordTimed subscribes a new Timed recorder that records until pub
// completes.
func RecordTimed[T any](
	pub stream.Publisher[T],
	scheduler *timing.Scheduler,
) *Timed[T] {
	r := NewTimed[T](scheduler)
	pub.Subscribe(r)

	return r
}

// RecordTimedN subscribes a new Timed recorder that stops after n records.
func RecordTimedN[T any](
	pub stream.Publisher[T],
	scheduler *timing.Scheduler,
	n int,
) *Timed[T] {
	r := NewTimedWithCount[T](scheduler, n)
	pub.Subscribe(r)

	return r
}
