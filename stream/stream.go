// Package stream defines the small publish/subscribe protocol that the
// harness produces into and consumes from.
//
// A Publisher hands a Subscription to each Subscriber through OnSubscribe.
// The Subscriber asks for values with Request and stops the flow with Cancel.
// Values arrive through OnValue and the stream terminates with a single
// OnCompletion.
package stream

// Demand is the number of values a subscriber is willing to receive.
type Demand int64

const (
	// None asks for no additional value.
	None Demand = 0

	// Unlimited removes any bound on the number of values.
	Unlimited Demand = -1
)

// IsUnlimited returns true if the demand has no bound.
func (d Demand) IsUnlimited() bool {
	return d < 0
}

// Add combines two demands. Anything added to Unlimited stays Unlimited.
func (d Demand) Add(other Demand) Demand {
	if d.IsUnlimited() || other.IsUnlimited() {
		return Unlimited
	}

	return d + other
}

// A Subscription is the handle a subscriber uses to control the flow.
type Subscription interface {
	// Request asks the publisher for n more values.
	Request(n Demand)

	// Cancel stops any future delivery to the subscriber.
	Cancel()
}

// A Driver is a subscription that produces nothing until it is driven.
// Subscribers that block for results call Drive before blocking.
type Driver interface {
	Drive()
}

// A Subscriber consumes the events of a publisher.
type Subscriber[T any] interface {
	// OnSubscribe is called once, before any other callback.
	OnSubscribe(s Subscription)

	// OnValue receives a value and returns the additional demand.
	OnValue(v T) Demand

	// OnCompletion receives the termination of the stream.
	OnCompletion(c Completion)
}

// A Publisher produces events to its subscribers.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}
