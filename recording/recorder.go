// Package recording provides subscribers that capture the events of a stream
// and let a test block until enough of them arrived.
package recording

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sarchlab/streamtest/config"
	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

// TestingT is the part of *testing.T and GinkgoT() used to report timeouts.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
}

var defaultTimeout = sync.OnceValue(func() time.Duration {
	c, err := config.Load()
	if err != nil {
		return config.DefaultWaitTimeout
	}

	return c.WaitTimeout
})

// A Recorder is a subscriber that stores every event it receives.
//
// A Recorder stops either after a fixed number of records or at the first
// completion. Once stopped, it ignores whatever else arrives. Events may be
// delivered from any goroutine; the records must only be read after a wait
// returned.
type Recorder[T any] struct {
	numRecords int
	clock      timing.TimeTeller

	mu      sync.Mutex
	records []stream.Event[T]
	times   []timing.VTime
	stopped bool
	sub     stream.Subscription

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Recorder that records until the stream completes.
func New[T any]() *Recorder[T] {
	return newRecorder[T](0, nil)
}

// NewWithCount creates a Recorder that stops after n records. n must be
// positive.
func NewWithCount[T any](n int) *Recorder[T] {
	if n <= 0 {
		panic(fmt.Sprintf(
			"recording: the number of records must be positive, got %d", n))
	}

	return newRecorder[T](n, nil)
}

func newRecorder[T any](n int, clock timing.TimeTeller) *Recorder[T] {
	return &Recorder[T]{
		numRecords: n,
		clock:      clock,
		done:       make(chan struct{}),
	}
}

// NumRecords returns the number of records the recorder waits for. It is 0
// when the recorder waits for the completion.
func (r *Recorder[T]) NumRecords() int {
	return r.numRecords
}

// OnSubscribe keeps the subscription and requests unlimited demand. A
// recorder can only be subscribed once.
func (r *Recorder[T]) OnSubscribe(s stream.Subscription) {
	r.mu.Lock()
	if r.sub != nil {
		r.mu.Unlock()
		panic("recording: recorder is already subscribed")
	}
	r.sub = s
	r.mu.Unlock()

	s.Request(stream.Unlimited)
}

// OnValue records a value.
func (r *Recorder[T]) OnValue(v T) stream.Demand {
	r.append(stream.Value(v))
	return stream.None
}

// OnCompletion records the completion.
func (r *Recorder[T]) OnCompletion(c stream.Completion) {
	r.append(stream.Complete[T](c))
}

func (r *Recorder[T]) append(e stream.Event[T]) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}

	r.records = append(r.records, e)
	if r.clock != nil {
		r.times = append(r.times, r.clock.CurrentTime())
	}

	r.stopped = r.shouldStop()
	stopped := r.stopped
	r.mu.Unlock()

	if stopped {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

func (r *Recorder[T]) shouldStop() bool {
	if r.numRecords > 0 {
		return len(r.records) == r.numRecords
	}

	return r.records[len(r.records)-1].IsCompletion()
}

// Done returns a channel that is closed when the recorder stops.
func (r *Recorder[T]) Done() <-chan struct{} {
	return r.done
}

// IsDone returns true if the stop condition holds.
func (r *Recorder[T]) IsDone() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Len returns the number of records captured so far.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// Records returns a copy of the records in arrival order.
func (r *Recorder[T]) Records() []stream.Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.records)
}

// WaitContext drives the stream if it needs to be driven, then blocks until
// the recorder stops or ctx is done. In both cases the recorder stops
// recording and the subscription is cancelled before returning. If ctx ends first, the returned error is a
// *TimeoutError.
func (r *Recorder[T]) WaitContext(ctx context.Context) error {
	return r.wait(ctx, r.driveSubscription)
}

// Wait is WaitContext with a timeout. A timeout is reported to t as an
// error; the test carries on. A non-positive timeout means the configured
// default.
func (r *Recorder[T]) Wait(t TestingT, timeout time.Duration) {
	t.Helper()

	r.waitAndReport(t, timeout, r.driveSubscription)
}

// WaitAndCollect waits like Wait and returns the records.
func (r *Recorder[T]) WaitAndCollect(
	t TestingT,
	timeout time.Duration,
) []stream.Event[T] {
	t.Helper()

	r.waitAndReport(t, timeout, r.driveSubscription)

	return r.Records()
}

func (r *Recorder[T]) waitAndReport(
	t TestingT,
	timeout time.Duration,
	drive func(),
) {
	t.Helper()

	if timeout <= 0 {
		timeout = defaultTimeout()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := r.wait(ctx, drive)
	if err != nil {
		t.Errorf("%s", err)
	}
}

func (r *Recorder[T]) wait(ctx context.Context, drive func()) error {
	defer r.close()

	drive()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
	}

	select {
	case <-r.done:
		return nil
	default:
	}

	return &TimeoutError{
		Expected: r.numRecords,
		Received: r.Len(),
		Cause:    ctx.Err(),
	}
}

func (r *Recorder[T]) subscription() stream.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sub
}

func (r *Recorder[T]) driveSubscription() {
	if d, ok := r.subscription().(stream.Driver); ok {
		d.Drive()
	}
}

// close stops recording and cancels the subscription. Deliveries already in
// flight are dropped.
func (r *Recorder[T]) close() {
	r.mu.Lock()
	r.stopped = true
	sub := r.sub
	r.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}
