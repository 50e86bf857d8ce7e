package recording_test

import (
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/streamtest/recording"
	"github.com/sarchlab/streamtest/source"
	"github.com/sarchlab/streamtest/stream"
	"github.com/sarchlab/streamtest/timing"
)

var _ = Describe("Timed", func() {
	var scheduler *timing.Scheduler

	BeforeEach(func() {
		scheduler = timing.NewScheduler()
	})

	It("should require a scheduler", func() {
		Expect(func() { recording.NewTimed[int](nil) }).To(Panic())
		Expect(func() { recording.NewTimedWithCount[int](scheduler, 0) }).To(Panic())
	})

	It("should stamp the records of a source with their emission time", func() {
		src := source.New(scheduler, []source.ScheduledEvent[int]{
			source.At(10, stream.Value(100)),
			source.At(50, stream.Value(500)),
			source.At(20, stream.Value(200)),
			source.At(70, stream.Finish[int]()),
			source.At(60, stream.Value(600)),
		})

		r := recording.RecordTimed[int](src, scheduler)
		records := r.WaitAndCollectTimed(GinkgoT(), time.Second)

		Expect(records).To(recording.EqualTimedRecords(
			recording.At(10, stream.Value(100)),
			recording.At(20, stream.Value(200)),
			recording.At(50, stream.Value(500)),
			recording.At(60, stream.Value(600)),
			recording.At(70, stream.Finish[int]()),
		))
	})

	It("should stamp a live stream with the current time", func() {
		subject := stream.NewSubject[string]()
		r := recording.RecordTimed[string](subject, scheduler)

		scheduler.SetNow(100)
		subject.Send("A")
		scheduler.SetNow(110)
		subject.Send("B")
		scheduler.SetNow(120)
		subject.Send("C")

		Expect(r.TimedRecords()).To(recording.EqualTimedRecords(
			recording.At(100, stream.Value("A")),
			recording.At(110, stream.Value("B")),
			recording.At(120, stream.Value("C")),
		))
	})

	It("should stop after the given number of records", func() {
		src := source.MakeBuilder[int]().
			WithScheduler(scheduler).
			WithValue(5, 1).
			WithValue(6, 2).
			WithValue(7, 3).
			Build("counted")

		r := recording.RecordTimedN[int](src, scheduler, 2)

		Expect(r.WaitAndCollectTimed(GinkgoT(), time.Second)).
			To(recording.EqualTimedRecords(
				recording.At(5, stream.Value(1)),
				recording.At(6, stream.Value(2)),
			))
	})

	It("should run the scheduler for its own tasks", func() {
		subject := stream.NewSubject[int]()
		r := recording.RecordTimed[int](subject, scheduler)

		scheduler.ScheduleAfter(3, func() { subject.Send(1) })
		scheduler.ScheduleAfter(9, func() { subject.Fail(errors.New("boom")) })

		records := r.WaitAndCollect(GinkgoT(), time.Second)

		Expect(records).To(recording.EqualRecords(
			stream.Value(1), stream.Fail[int](errors.New("boom"))))
		Expect(r.TimedRecords()[1].Time).To(Equal(timing.VTime(9)))
	})

	It("should keep times and records paired under concurrent delivery", func() {
		subject := stream.NewSubject[int]()
		r := recording.RecordTimedN[int](subject, scheduler, 400)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					subject.Send(j)
				}
			}()
		}
		wg.Wait()

		r.Wait(GinkgoT(), time.Second)

		Expect(r.TimedRecords()).To(HaveLen(r.Len()))
		Expect(r.Len()).To(Equal(400))
	})

	It("should report a timeout with the records so far", func() {
		subject := stream.NewSubject[int]()
		r := recording.RecordTimedN[int](subject, scheduler, 2)
		subject.Send(1)

		t := &reporter{}
		records := r.WaitAndCollectTimed(t, 10*time.Millisecond)

		Expect(records).To(HaveLen(1))
		Expect(t.Failures()).To(ConsistOf(
			"waiting for 2 values timed out, received only 1 value"))
	})
})
