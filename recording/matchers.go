package recording

import (
	"fmt"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/sarchlab/streamtest/stream"
)

// EqualRecords succeeds if the actual []stream.Event[T] equals expected
// under EventsEqual.
func EqualRecords[T any](expected ...stream.Event[T]) types.GomegaMatcher {
	return &recordsMatcher[T]{expected: expected}
}

type recordsMatcher[T any] struct {
	expected []stream.Event[T]
}

func (m *recordsMatcher[T]) Match(actual any) (bool, error) {
	records, ok := actual.([]stream.Event[T])
	if !ok {
		return false, fmt.Errorf(
			"EqualRecords expects a []stream.Event[%T], got:\n%s",
			*new(T), format.Object(actual, 1))
	}

	return EventsEqual(records, m.expected), nil
}

func (m *recordsMatcher[T]) FailureMessage(actual any) string {
	return "Expected records to be equal\n" +
		Diff(actual.([]stream.Event[T]), m.expected)
}

func (m *recordsMatcher[T]) NegatedFailureMessage(actual any) string {
	return "Expected records not to be equal\n" +
		Diff(actual.([]stream.Event[T]), m.expected)
}

// EqualTimedRecords succeeds if the actual []TimedRecord[T] equals expected
// under TimedEqual.
func EqualTimedRecords[T any](expected ...TimedRecord[T]) types.GomegaMatcher {
	return &timedRecordsMatcher[T]{expected: expected}
}

type timedRecordsMatcher[T any] struct {
	expected []TimedRecord[T]
}

func (m *timedRecordsMatcher[T]) Match(actual any) (bool, error) {
	records, ok := actual.([]TimedRecord[T])
	if !ok {
		return false, fmt.Errorf(
			"EqualTimedRecords expects a []recording.TimedRecord[%T], got:\n%s",
			*new(T), format.Object(actual, 1))
	}

	return TimedEqual(records, m.expected), nil
}

func (m *timedRecordsMatcher[T]) FailureMessage(actual any) string {
	return "Expected timed records to be equal\n" +
		TimedDiff(actual.([]TimedRecord[T]), m.expected)
}

func (m *timedRecordsMatcher[T]) NegatedFailureMessage(actual any) string {
	return "Expected timed records not to be equal\n" +
		TimedDiff(actual.([]TimedRecord[T]), m.expected)
}

// HaveValues succeeds if the value records of the actual []stream.Event[T]
// are exactly expected. Completions are ignored.
func HaveValues[T any](expected ...T) types.GomegaMatcher {
	return &valuesMatcher[T]{expected: expected}
}

type valuesMatcher[T any] struct {
	expected []T
}

func (m *valuesMatcher[T]) Match(actual any) (bool, error) {
	records, ok := actual.([]stream.Event[T])
	if !ok {
		return false, fmt.Errorf(
			"HaveValues expects a []stream.Event[%T], got:\n%s",
			*new(T), format.Object(actual, 1))
	}

	return ValuesEqual(records, m.expected), nil
}

func (m *valuesMatcher[T]) FailureMessage(actual any) string {
	return format.Message(
		Values(actual.([]stream.Event[T])), "to have values", m.expected)
}

func (m *valuesMatcher[T]) NegatedFailureMessage(actual any) string {
	return format.Message(
		Values(actual.([]stream.Event[T])), "not to have values", m.expected)
}
