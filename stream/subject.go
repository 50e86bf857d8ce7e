package stream

import "sync"

// Subject is a hot publisher that forwards whatever is sent to it to all the
// current subscribers. Values sent to a subscriber that has no outstanding
// demand are dropped. Send may be called from multiple goroutines.
type Subject[T any] struct {
	mu         sync.Mutex
	subs       []*subjectSubscription[T]
	completion *Completion
}

// NewSubject creates a Subject without any subscriber.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe attaches a subscriber. A subscriber that arrives after the
// subject completed receives the completion right away.
func (s *Subject[T]) Subscribe(sub Subscriber[T]) {
	s.subscribe(sub, nil)
}

func (s *Subject[T]) subscribe(
	sub Subscriber[T],
	onFirstDemand func(*subjectSubscription[T]),
) {
	ss := &subjectSubscription[T]{
		sub:           sub,
		detach:        s.detach,
		onFirstDemand: onFirstDemand,
	}

	s.mu.Lock()
	completion := s.completion
	if completion == nil {
		s.subs = append(s.subs, ss)
	} else {
		ss.onFirstDemand = nil
	}
	s.mu.Unlock()

	sub.OnSubscribe(ss)

	if completion != nil {
		ss.complete(*completion)
	}
}

// Send delivers v to every subscriber with outstanding demand. Values sent
// after the completion are ignored.
func (s *Subject[T]) Send(v T) {
	s.mu.Lock()
	if s.completion != nil {
		s.mu.Unlock()
		return
	}
	subs := make([]*subjectSubscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ss := range subs {
		ss.deliver(v)
	}
}

// SendCompletion terminates the subject. Only the first completion counts.
func (s *Subject[T]) SendCompletion(c Completion) {
	s.mu.Lock()
	if s.completion != nil {
		s.mu.Unlock()
		return
	}
	s.completion = &c
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, ss := range subs {
		ss.complete(c)
	}
}

// Finish completes the subject normally.
func (s *Subject[T]) Finish() {
	s.SendCompletion(Finished())
}

// Fail completes the subject with err.
func (s *Subject[T]) Fail(err error) {
	s.SendCompletion(Failed(err))
}

// NumSubscribers returns the number of attached subscribers.
func (s *Subject[T]) NumSubscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subs)
}

func (s *Subject[T]) detach(ss *subjectSubscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub == ss {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// ValueSubject is a Subject that remembers the latest value. Each new
// subscriber receives the current value as soon as it requests any demand.
type ValueSubject[T any] struct {
	Subject[T]

	currentLock sync.RWMutex
	current     T
}

// NewValueSubject creates a ValueSubject holding initial.
func NewValueSubject[T any](initial T) *ValueSubject[T] {
	return &ValueSubject[T]{current: initial}
}

// Current returns the latest value.
func (s *ValueSubject[T]) Current() T {
	s.currentLock.RLock()
	defer s.currentLock.RUnlock()

	return s.current
}

// Send updates the current value and forwards it to the subscribers.
func (s *ValueSubject[T]) Send(v T) {
	s.currentLock.Lock()
	s.current = v
	s.currentLock.Unlock()

	s.Subject.Send(v)
}

// Subscribe attaches a subscriber that will first receive the current value.
func (s *ValueSubject[T]) Subscribe(sub Subscriber[T]) {
	s.subscribe(sub, func(ss *subjectSubscription[T]) {
		ss.deliver(s.Current())
	})
}

type subjectSubscription[T any] struct {
	mu            sync.Mutex
	sub           Subscriber[T]
	demand        Demand
	cancelled     bool
	detach        func(*subjectSubscription[T])
	onFirstDemand func(*subjectSubscription[T])
}

func (ss *subjectSubscription[T]) Request(n Demand) {
	if n == None {
		return
	}

	ss.mu.Lock()
	if ss.cancelled {
		ss.mu.Unlock()
		return
	}
	ss.demand = ss.demand.Add(n)
	first := ss.onFirstDemand
	ss.onFirstDemand = nil
	ss.mu.Unlock()

	if first != nil {
		first(ss)
	}
}

func (ss *subjectSubscription[T]) Cancel() {
	ss.mu.Lock()
	if ss.cancelled {
		ss.mu.Unlock()
		return
	}
	ss.cancelled = true
	ss.onFirstDemand = nil
	ss.mu.Unlock()

	ss.detach(ss)
}

func (ss *subjectSubscription[T]) deliver(v T) {
	ss.mu.Lock()
	if ss.cancelled {
		ss.mu.Unlock()
		return
	}

	if !ss.demand.IsUnlimited() {
		if ss.demand == None {
			ss.mu.Unlock()
			return
		}
		ss.demand--
	}
	ss.mu.Unlock()

	more := ss.sub.OnValue(v)
	if more != None {
		ss.Request(more)
	}
}

func (ss *subjectSubscription[T]) complete(c Completion) {
	ss.mu.Lock()
	if ss.cancelled {
		ss.mu.Unlock()
		return
	}
	ss.cancelled = true
	ss.onFirstDemand = nil
	ss.mu.Unlock()

	ss.sub.OnCompletion(c)
}
