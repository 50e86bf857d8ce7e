package timing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("taskQueue", func() {
	var queue *taskQueue

	BeforeEach(func() {
		queue = newTaskQueue()
	})

	It("should return nil when empty", func() {
		Expect(queue.Pop()).To(BeNil())
		Expect(queue.Peek()).To(BeNil())
		Expect(queue.Len()).To(Equal(0))
	})

	It("should pop by time, then by sequence", func() {
		for i := 0; i < 1000; i++ {
			queue.Push(&Task{
				Time: VTime(rand.Int63n(20)),
				Seq:  uint64(i),
			})
		}

		prev := queue.Pop()
		for queue.Len() > 0 {
			next := queue.Pop()

			Expect(next.Time).To(BeNumerically(">=", prev.Time))
			if next.Time == prev.Time {
				Expect(next.Seq).To(BeNumerically(">", prev.Seq))
			}

			prev = next
		}
	})

	It("should peek without removing", func() {
		queue.Push(&Task{Time: 3, Seq: 1})
		queue.Push(&Task{Time: 1, Seq: 2})

		Expect(queue.Peek().Time).To(Equal(VTime(1)))
		Expect(queue.Len()).To(Equal(2))
	})
})
