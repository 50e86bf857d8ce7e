package recording

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sarchlab/streamtest/stream"
)

var compareAll = cmp.Exporter(func(reflect.Type) bool { return true })

// EventEqual compares two events. Values are compared structurally. Two
// failures are equal if their errors have the same text.
func EventEqual[T any](a, b stream.Event[T]) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() {
	case stream.KindValue:
		av, _ := a.Value()
		bv, _ := b.Value()

		return cmp.Equal(av, bv, compareAll)
	case stream.KindCompletion:
		ac, _ := a.Completion()
		bc, _ := b.Completion()

		return completionEqual(ac, bc)
	default:
		panic(fmt.Sprintf("recording: unknown event kind %d", a.Kind()))
	}
}

func completionEqual(a, b stream.Completion) bool {
	if a.IsFinished() || b.IsFinished() {
		return a.IsFinished() && b.IsFinished()
	}

	return a.Err.Error() == b.Err.Error()
}

// EventsEqual compares two record sequences element by element.
func EventsEqual[T any](a, b []stream.Event[T]) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !EventEqual(a[i], b[i]) {
			return false
		}
	}

	return true
}

// TimedEqual compares two timed record sequences. Both the times and the
// events must match.
func TimedEqual[T any](a, b []TimedRecord[T]) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Time != b[i].Time || !EventEqual(a[i].Event, b[i].Event) {
			return false
		}
	}

	return true
}

// Values extracts the payloads of the value records, skipping completions.
func Values[T any](records []stream.Event[T]) []T {
	values := make([]T, 0, len(records))
	for _, r := range records {
		if v, ok := r.Value(); ok {
			values = append(values, v)
		}
	}

	return values
}

// ValuesEqual tells if the value records of records are exactly expected.
func ValuesEqual[T any](records []stream.Event[T], expected []T) bool {
	return cmp.Equal(Values(records), expected,
		compareAll, cmpopts.EquateEmpty())
}

// Diff lists both sequences side by side and flags the positions that
// differ. A missing element is shown as "-".
func Diff[T any](actual, expected []stream.Event[T]) string {
	return diff(len(actual), len(expected),
		func(i int) string { return actual[i].String() },
		func(i int) string { return expected[i].String() },
		func(i int) bool { return EventEqual(actual[i], expected[i]) },
	)
}

// TimedDiff is Diff for timed records.
func TimedDiff[T any](actual, expected []TimedRecord[T]) string {
	return diff(len(actual), len(expected),
		func(i int) string { return actual[i].String() },
		func(i int) string { return expected[i].String() },
		func(i int) bool {
			return actual[i].Time == expected[i].Time &&
				EventEqual(actual[i].Event, expected[i].Event)
		},
	)
}

func diff(
	numActual, numExpected int,
	actual, expected func(int) string,
	equal func(int) bool,
) string {
	b := new(strings.Builder)

	for i := 0; i < max(numActual, numExpected); i++ {
		left, right := "-", "-"
		if i < numActual {
			left = actual(i)
		}
		if i < numExpected {
			right = expected(i)
		}

		mark := ""
		if i >= numActual || i >= numExpected || !equal(i) {
			mark = " <- mismatch"
		}

		fmt.Fprintf(b, "[%d]%s\n  actual:   %s\n  expected: %s\n",
			i, mark, left, right)
	}

	return b.String()
}
