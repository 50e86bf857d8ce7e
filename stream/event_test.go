package stream_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/streamtest/stream"
)

var _ = Describe("Event", func() {
	It("should hold a value", func() {
		e := stream.Value(42)

		v, ok := e.Value()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(42))
		Expect(e.Kind()).To(Equal(stream.KindValue))
		Expect(e.IsCompletion()).To(BeFalse())

		_, ok = e.Completion()
		Expect(ok).To(BeFalse())
		Expect(e.String()).To(Equal("42"))
	})

	It("should hold a finished completion", func() {
		e := stream.Finish[int]()

		c, ok := e.Completion()
		Expect(ok).To(BeTrue())
		Expect(c.IsFinished()).To(BeTrue())
		Expect(c.IsFailed()).To(BeFalse())
		Expect(e.String()).To(Equal("finished"))

		_, ok = e.Value()
		Expect(ok).To(BeFalse())
	})

	It("should hold a failed completion", func() {
		e := stream.Fail[string](errors.New("boom"))

		c, ok := e.Completion()
		Expect(ok).To(BeTrue())
		Expect(c.IsFailed()).To(BeTrue())
		Expect(c.Err).To(MatchError("boom"))
		Expect(e.String()).To(Equal("failure(boom)"))
	})

	It("should panic on a failure without error", func() {
		Expect(func() { stream.Failed(nil) }).To(Panic())
	})

	It("should deliver to the matching callback", func() {
		sub := newCollector[int](stream.Unlimited)

		Expect(stream.Value(1).Deliver(sub)).To(Equal(stream.None))
		Expect(stream.Finish[int]().Deliver(sub)).To(Equal(stream.None))

		Expect(sub.events).To(HaveLen(2))
		Expect(sub.events[0].String()).To(Equal("1"))
		Expect(sub.events[1].IsCompletion()).To(BeTrue())
	})
})

var _ = Describe("Demand", func() {
	It("should add bounded demands", func() {
		Expect(stream.Demand(2).Add(3)).To(Equal(stream.Demand(5)))
	})

	It("should keep unlimited demand unlimited", func() {
		Expect(stream.Unlimited.Add(3)).To(Equal(stream.Unlimited))
		Expect(stream.Demand(3).Add(stream.Unlimited).IsUnlimited()).To(BeTrue())
	})
})
