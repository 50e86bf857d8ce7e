package stream

import "fmt"

// Completion tells how a stream terminated. The zero value is a successful
// completion.
type Completion struct {
	// Err is the failure that terminated the stream. A nil Err means the
	// stream finished normally.
	Err error
}

// Finished returns a Completion that represents a normal termination.
func Finished() Completion {
	return Completion{}
}

// Failed returns a Completion that represents a termination with err.
func Failed(err error) Completion {
	if err == nil {
		panic("stream: a failed completion requires an error")
	}

	return Completion{Err: err}
}

// IsFinished returns true if the stream terminated normally.
func (c Completion) IsFinished() bool {
	return c.Err == nil
}

// IsFailed returns true if the stream terminated with an error.
func (c Completion) IsFailed() bool {
	return c.Err != nil
}

// String returns "finished" or "failure(<error text>)".
func (c Completion) String() string {
	if c.Err == nil {
		return "finished"
	}

	return fmt.Sprintf("failure(%s)", c.Err.Error())
}

// EventKind distinguishes the variants of an Event.
type EventKind int

// The two kinds of stream traffic.
const (
	KindValue EventKind = iota
	KindCompletion
)

func (k EventKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindCompletion:
		return "completion"
	default:
		panic(fmt.Sprintf("stream: unknown event kind %d", int(k)))
	}
}

// Event is one unit of stream traffic, either a value or a completion.
// Create events with Value, Complete, Finish, or Fail.
type Event[T any] struct {
	kind       EventKind
	value      T
	completion Completion
}

// Value creates a value event.
func Value[T any](v T) Event[T] {
	return Event[T]{kind: KindValue, value: v}
}

// Complete creates a completion event.
func Complete[T any](c Completion) Event[T] {
	return Event[T]{kind: KindCompletion, completion: c}
}

// Finish creates a successful completion event.
func Finish[T any]() Event[T] {
	return Complete[T](Finished())
}

// Fail creates a failed completion event.
func Fail[T any](err error) Event[T] {
	return Complete[T](Failed(err))
}

// Kind returns which variant the event holds.
func (e Event[T]) Kind() EventKind {
	return e.kind
}

// Value returns the payload of a value event. The second return value is
// false for completion events.
func (e Event[T]) Value() (T, bool) {
	if e.kind != KindValue {
		var zero T
		return zero, false
	}

	return e.value, true
}

// Completion returns the completion of a completion event. The second return
// value is false for value events.
func (e Event[T]) Completion() (Completion, bool) {
	if e.kind != KindCompletion {
		return Completion{}, false
	}

	return e.completion, true
}

// IsCompletion returns true if the event terminates the stream.
func (e Event[T]) IsCompletion() bool {
	return e.kind == KindCompletion
}

// String formats the payload of a value event, or the completion.
func (e Event[T]) String() string {
	switch e.kind {
	case KindValue:
		return fmt.Sprintf("%v", e.value)
	case KindCompletion:
		return e.completion.String()
	default:
		panic(fmt.Sprintf("stream: unknown event kind %d", int(e.kind)))
	}
}

// Deliver hands the event to the matching callback of the subscriber. The
// demand returned by OnValue is passed back; completions return None.
func (e Event[T]) Deliver(s Subscriber[T]) Demand {
	switch e.kind {
	case KindValue:
		return s.OnValue(e.value)
	case KindCompletion:
		s.OnCompletion(e.completion)
		return None
	default:
		panic(fmt.Sprintf("stream: unknown event kind %d", int(e.kind)))
	}
}
