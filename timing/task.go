package timing

import "fmt"

// VTime is a point on the virtual timeline, counted in logical ticks. It has
// no relation to the wall clock.
type VTime int64

// A Task is a unit of work that runs when the scheduler reaches its time.
type Task struct {
	// Time is the virtual time at which the task runs.
	Time VTime

	// Seq is the registration order, assigned by the scheduler. Tasks that
	// share a time run in Seq order.
	Seq uint64

	// Name describes the task in logs and traces. It may be empty.
	Name string

	// Action is the work to perform.
	Action func()
}

func (t *Task) String() string {
	name := t.Name
	if name == "" {
		name = "task"
	}

	return fmt.Sprintf("%s#%d@%d", name, t.Seq, t.Time)
}

// before determines the execution order between two tasks.
func (t *Task) before(other *Task) bool {
	if t.Time != other.Time {
		return t.Time < other.Time
	}

	return t.Seq < other.Seq
}
