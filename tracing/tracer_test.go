package tracing

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/streamtest/datarecording"
	"github.com/sarchlab/streamtest/timing"
)

var _ = Describe("TaskTracer", func() {
	var (
		mockCtrl  *gomock.Controller
		backend   *MockDataRecorder
		scheduler *timing.Scheduler
		tracer    *TaskTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		backend.EXPECT().CreateTable(TaskTable, TaskEntry{})
		backend.EXPECT().CreateTable(DrainTable, DrainEntry{})

		scheduler = timing.NewScheduler()
		tracer = NewTaskTracer(backend)
		scheduler.AcceptHook(tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record tasks in execution order", func() {
		gomock.InOrder(
			backend.EXPECT().InsertData(TaskTable,
				TaskEntry{Step: 0, Time: 5, Seq: 1, Name: "b"}),
			backend.EXPECT().InsertData(TaskTable,
				TaskEntry{Step: 1, Time: 10, Seq: 0, Name: "a"}),
			backend.EXPECT().InsertData(DrainTable,
				DrainEntry{Drain: 0, EndTime: 10, NumTasks: 2}),
		)

		scheduler.Schedule(timing.Task{Time: 10, Name: "a", Action: func() {}})
		scheduler.Schedule(timing.Task{Time: 5, Name: "b", Action: func() {}})
		scheduler.Run()
	})

	It("should count the tasks of each drain", func() {
		gomock.InOrder(
			backend.EXPECT().InsertData(TaskTable, gomock.Any()),
			backend.EXPECT().InsertData(DrainTable,
				DrainEntry{Drain: 0, EndTime: 1, NumTasks: 1}),
			backend.EXPECT().InsertData(TaskTable,
				TaskEntry{Step: 1, Time: 3, Seq: 1}),
			backend.EXPECT().InsertData(DrainTable,
				DrainEntry{Drain: 1, EndTime: 3, NumTasks: 1}),
		)

		scheduler.ScheduleAfter(1, func() {})
		scheduler.Run()
		scheduler.ScheduleDelayed(2, func() {})
		scheduler.Run()
	})

	It("should skip tasks outside the time range", func() {
		tracer.SetTimeRange(10, 20)

		gomock.InOrder(
			backend.EXPECT().InsertData(TaskTable,
				TaskEntry{Step: 0, Time: 15, Seq: 1}),
			backend.EXPECT().InsertData(DrainTable,
				DrainEntry{Drain: 0, EndTime: 25, NumTasks: 1}),
		)

		scheduler.ScheduleAfter(5, func() {})
		scheduler.ScheduleAfter(15, func() {})
		scheduler.ScheduleAfter(25, func() {})
		scheduler.Run()
	})

	It("should flush on terminate", func() {
		backend.EXPECT().Flush()

		tracer.Terminate()
	})
})

var _ = Describe("TaskTracer with SQLite", func() {
	var (
		db     *sql.DB
		writer datarecording.DataRecorder
		reader datarecording.DataReader
	)

	BeforeEach(func() {
		var err error
		db, err = sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		writer = datarecording.NewWithDB(db)
		reader = datarecording.NewReaderWithDB(db)
		reader.MapTable(TaskTable, TaskEntry{})
		reader.MapTable(DrainTable, DrainEntry{})
	})

	AfterEach(func() {
		Expect(reader.Close()).To(Succeed())
	})

	It("should store the trace of a drain", func() {
		scheduler := timing.NewScheduler()
		tracer := NewTaskTracer(writer)
		scheduler.AcceptHook(tracer)

		scheduler.Schedule(timing.Task{
			Time: 20, Name: "source.value", Action: func() {}})
		scheduler.Schedule(timing.Task{
			Time: 30, Name: "source.completion", Action: func() {}})
		scheduler.Run()
		tracer.Terminate()

		tasks, total, err := reader.Query(context.Background(), TaskTable,
			datarecording.QueryParams{OrderBy: "Step"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(tasks).To(Equal([]any{
			&TaskEntry{Step: 0, Time: 20, Seq: 0, Name: "source.value"},
			&TaskEntry{Step: 1, Time: 30, Seq: 1, Name: "source.completion"},
		}))

		drains, _, err := reader.Query(context.Background(), DrainTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(drains).To(ConsistOf(
			&DrainEntry{Drain: 0, EndTime: 30, NumTasks: 2}))
	})
})
