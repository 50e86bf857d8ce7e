// Package script reads event schedules from YAML files.
//
// A script looks like this:
//
//	name: prices
//	events:
//	  - time: 10
//	    value: 100
//	  - time: 20
//	    value: {bid: 3, ask: 4}
//	  - time: 30
//	    fail: connection lost
//
// Each event holds exactly one of value, finish or fail. A finish entry reads
// "finish: true".
package script

import (
	"cmp"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/streamtest/source"
	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// DefaultName is the name of a script that does not set one.
const DefaultName = "script"

// Script is a named schedule of events.
type Script struct {
	Name   string  `yaml:"name"`
	Events []Entry `yaml:"events"`
}

// Entry is one scheduled event of a script.
type Entry struct {
	Time   int64     `yaml:"time"`
	Value  yaml.Node `yaml:"value"`
	Finish bool      `yaml:"finish"`
	Fail   string    `yaml:"fail"`
}

func (e *Entry) hasValue() bool {
	return e.Value.Kind != 0
}

// Load reads and validates the script stored in path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading script %s", path)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", path)
	}

	return s, nil
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	s := &Script{}

	err := yaml.Unmarshal(data, s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding script")
	}

	if s.Name == "" {
		s.Name = DefaultName
	}

	err = s.Validate()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks that every entry holds a single event with a non-negative
// time and that nothing is scheduled after the first completion.
func (s *Script) Validate() error {
	for i := range s.Events {
		err := s.Events[i].validate()
		if err != nil {
			return errors.Wrapf(err, "event %d", i)
		}
	}

	sorted := s.sortedEntries()
	for i, e := range sorted {
		if e.isCompletion() && i < len(sorted)-1 {
			return errors.Errorf(
				"event @ %d follows the completion @ %d",
				sorted[i+1].Time, e.Time)
		}
	}

	return nil
}

func (e *Entry) validate() error {
	if e.Time < 0 {
		return errors.Errorf("negative time %d", e.Time)
	}

	kinds := 0
	if e.hasValue() {
		kinds++
	}

	if e.Finish {
		kinds++
	}

	if e.Fail != "" {
		kinds++
	}

	if kinds != 1 {
		return errors.New("exactly one of value, finish and fail must be set")
	}

	return nil
}

func (e *Entry) isCompletion() bool {
	return e.Finish || e.Fail != ""
}

func (s *Script) sortedEntries() []*Entry {
	sorted := make([]*Entry, len(s.Events))
	for i := range s.Events {
		sorted[i] = &s.Events[i]
	}

	slices.SortStableFunc(sorted, func(a, b *Entry) int {
		return cmp.Compare(a.Time, b.Time)
	})

	return sorted
}

// Schedule converts the entries into scheduled events, in file order.
func (s *Script) Schedule() ([]source.ScheduledEvent[any], error) {
	events := make([]source.ScheduledEvent[any], 0, len(s.Events))

	for i := range s.Events {
		e := &s.Events[i]

		evt, err := e.event()
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}

		events = append(events, source.At(timing.VTime(e.Time), evt))
	}

	return events, nil
}

func (e *Entry) event() (stream.Event[any], error) {
	switch {
	case e.Finish:
		return stream.Finish[any](), nil
	case e.Fail != "":
		return stream.Fail[any](errors.New(e.Fail)), nil
	}

	var v any

	err := e.Value.Decode(&v)
	if err != nil {
		return stream.Event[any]{}, errors.Wrap(err, "decoding value")
	}

	return stream.Value(v), nil
}

// Source creates a source that replays the script through scheduler.
func (s *Script) Source(scheduler *timing.Scheduler) (*source.Source[any], error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	events, err := s.Schedule()
	if err != nil {
		return nil, err
	}

	return source.MakeBuilder[any]().
		WithScheduler(scheduler).
		WithEvents(events...).
		Build(s.Name), nil
}
