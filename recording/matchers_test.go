package recording_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/streamtest/recording"
	"github.com/sarchlab/streamtest/stream"
)

var _ = Describe("Matchers", func() {
	records := []stream.Event[int]{stream.Value(1), stream.Value(2), stream.Finish[int]()}

	It("should match equal records", func() {
		Expect(records).To(recording.EqualRecords(
			stream.Value(1), stream.Value(2), stream.Finish[int]()))
		Expect(records).NotTo(recording.EqualRecords(stream.Value(1)))
	})

	It("should explain a mismatch with a diff", func() {
		m := recording.EqualRecords(stream.Value(1), stream.Value(5))

		ok, err := m.Match(records)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(m.FailureMessage(records)).To(ContainSubstring("[1] <- mismatch"))
	})

	It("should refuse other types", func() {
		_, err := recording.EqualRecords(stream.Value(1)).Match([]int{1})
		Expect(err).To(HaveOccurred())

		_, err = recording.HaveValues(1).Match("1")
		Expect(err).To(HaveOccurred())

		_, err = recording.EqualTimedRecords(recording.At(0, stream.Value(1))).
			Match(records)
		Expect(err).To(HaveOccurred())
	})

	It("should match values only", func() {
		Expect(records).To(recording.HaveValues(1, 2))
		Expect(records).NotTo(recording.HaveValues(2, 1))
	})

	It("should match timed records", func() {
		timed := []recording.TimedRecord[int]{recording.At(3, stream.Value(1))}

		Expect(timed).To(recording.EqualTimedRecords(recording.At(3, stream.Value(1))))
		Expect(timed).NotTo(recording.EqualTimedRecords(recording.At(4, stream.Value(1))))
	})
})
