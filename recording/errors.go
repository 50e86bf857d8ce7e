package recording

import "fmt"

// TimeoutError reports a wait that ended before the recorder stopped.
type TimeoutError struct {
	// Expected is the number of records waited for, or 0 when waiting for
	// the completion.
	Expected int

	// Received is the number of records captured when the wait ended.
	Received int

	// Cause is the reason the context ended.
	Cause error
}

func (e *TimeoutError) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf(
			"waiting for %s timed out, received only %s",
			countValues(e.Expected), countValues(e.Received))
	}

	return fmt.Sprintf(
		"waiting for the subscription to complete timed out, "+
			"received only %s",
		countValues(e.Received))
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

func countValues(n int) string {
	if n == 1 {
		return "1 value"
	}

	return fmt.Sprintf("%d values", n)
}
