// Package eventbus exposes topics of an asaskevich/EventBus bus as streams.
//
// Values are published on a topic and the completion on the companion topic
// returned by CompletionTopic:
//
//	eventbus.Send(bus, "prices", 42)
//	eventbus.Complete(bus, "prices", stream.Finished())
package eventbus

import (
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"

	"github.com/sarchlab/streamtest/stream"
)

// CompletionTopic returns the topic that carries the completion of topic.
func CompletionTopic(topic string) string {
	return topic + ":completion"
}

// Send publishes a value on topic.
func Send[T any](bus evbus.BusPublisher, topic string, v T) {
	bus.Publish(topic, v)
}

// Complete publishes the completion of topic.
func Complete(bus evbus.BusPublisher, topic string, c stream.Completion) {
	bus.Publish(CompletionTopic(topic), c)
}

// Publisher is a live publisher fed by a bus topic. It attaches to the bus
// on the first subscription and fans the bus traffic out to its subscribers.
// A topic of a bus should be wrapped by a single Publisher.
type Publisher[T any] struct {
	bus   evbus.Bus
	topic string
	async bool

	// The bus identifies handlers by function pointer, so the same values
	// must be passed to Subscribe and Unsubscribe.
	valueHandler      func(T)
	completionHandler func(stream.Completion)

	attachLock sync.Mutex
	attached   bool

	mu         sync.Mutex
	subs       []*subscription[T]
	completion *stream.Completion
}

// NewPublisher creates a Publisher whose subscribers are called on the
// goroutine that publishes.
func NewPublisher[T any](bus evbus.Bus, topic string) *Publisher[T] {
	return newPublisher[T](bus, topic, false)
}

// NewAsyncPublisher creates a Publisher whose subscribers are called on bus
// goroutines. Deliveries keep the publication order. Use the bus's WaitAsync
// to wait for the pending deliveries.
func NewAsyncPublisher[T any](bus evbus.Bus, topic string) *Publisher[T] {
	return newPublisher[T](bus, topic, true)
}

func newPublisher[T any](bus evbus.Bus, topic string, async bool) *Publisher[T] {
	p := &Publisher[T]{bus: bus, topic: topic, async: async}
	p.valueHandler = p.onValue
	p.completionHandler = p.onCompletion

	return p
}

// Topic returns the topic that carries the values.
func (p *Publisher[T]) Topic() string {
	return p.topic
}

// Subscribe attaches a subscriber. Values published before the subscriber
// requested any demand are not delivered to it. Subscribe panics if the
// publisher cannot attach to the bus.
func (p *Publisher[T]) Subscribe(sub stream.Subscriber[T]) {
	ss := &subscription[T]{publisher: p, sub: sub}

	if err := p.attach(); err != nil {
		panic(errors.Wrapf(err, "eventbus: attaching to topic %s", p.topic))
	}

	p.mu.Lock()
	completion := p.completion
	if completion == nil {
		p.subs = append(p.subs, ss)
	}
	p.mu.Unlock()

	sub.OnSubscribe(ss)

	if completion != nil {
		ss.complete(*completion)
	}
}

// attach must not be called with mu held. A synchronous bus calls onValue
// under its own lock.
func (p *Publisher[T]) attach() error {
	p.attachLock.Lock()
	defer p.attachLock.Unlock()

	if p.attached {
		return nil
	}

	subscribe := p.bus.Subscribe
	if p.async {
		subscribe = func(topic string, fn any) error {
			return p.bus.SubscribeAsync(topic, fn, true)
		}
	}

	if err := subscribe(p.topic, p.valueHandler); err != nil {
		return err
	}

	err := subscribe(CompletionTopic(p.topic), p.completionHandler)
	if err != nil {
		_ = p.bus.Unsubscribe(p.topic, p.valueHandler)
		return err
	}

	p.attached = true

	return nil
}

// Close detaches the publisher from the bus. Subscribers that did not
// receive a completion will not receive anything else.
func (p *Publisher[T]) Close() error {
	p.attachLock.Lock()
	defer p.attachLock.Unlock()

	if !p.attached {
		return nil
	}

	p.attached = false

	p.mu.Lock()
	p.subs = nil
	p.mu.Unlock()

	if err := p.bus.Unsubscribe(p.topic, p.valueHandler); err != nil {
		return err
	}

	return p.bus.Unsubscribe(CompletionTopic(p.topic), p.completionHandler)
}

// NumSubscribers returns the number of attached subscribers.
func (p *Publisher[T]) NumSubscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.subs)
}

func (p *Publisher[T]) onValue(v T) {
	p.mu.Lock()
	subs := make([]*subscription[T], len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, ss := range subs {
		ss.deliver(v)
	}
}

func (p *Publisher[T]) onCompletion(c stream.Completion) {
	p.mu.Lock()
	if p.completion != nil {
		p.mu.Unlock()
		return
	}
	p.completion = &c
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	for _, ss := range subs {
		ss.complete(c)
	}
}

func (p *Publisher[T]) detach(ss *subscription[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.subs {
		if s == ss {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

type subscription[T any] struct {
	publisher *Publisher[T]
	sub       stream.Subscriber[T]
	requested atomic.Bool
	cancelled atomic.Bool
}

// Request opens the flow. The bus has no flow control, so the amount is
// ignored.
func (ss *subscription[T]) Request(n stream.Demand) {
	if n != stream.None {
		ss.requested.Store(true)
	}
}

func (ss *subscription[T]) Cancel() {
	if ss.cancelled.Swap(true) {
		return
	}

	ss.publisher.detach(ss)
}

func (ss *subscription[T]) deliver(v T) {
	if ss.cancelled.Load() || !ss.requested.Load() {
		return
	}

	ss.sub.OnValue(v)
}

func (ss *subscription[T]) complete(c stream.Completion) {
	if ss.cancelled.Swap(true) {
		return
	}

	ss.sub.OnCompletion(c)
}
