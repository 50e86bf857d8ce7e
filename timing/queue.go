package timing

import "container/heap"

// taskQueue keeps the pending tasks ordered by (Time, Seq). It is only
// touched while the scheduler holds its queue lock.
type taskQueue struct {
	tasks taskHeap
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.tasks = make([]*Task, 0)
	heap.Init(&q.tasks)

	return q
}

// Push adds a task to the queue.
func (q *taskQueue) Push(t *Task) {
	heap.Push(&q.tasks, t)
}

// Pop removes and returns the earliest task, or nil if the queue is empty.
func (q *taskQueue) Pop() *Task {
	if q.tasks.Len() == 0 {
		return nil
	}

	return heap.Pop(&q.tasks).(*Task)
}

// Peek returns the earliest task without removing it.
func (q *taskQueue) Peek() *Task {
	if q.tasks.Len() == 0 {
		return nil
	}

	return q.tasks[0]
}

// Len returns the number of pending tasks.
func (q *taskQueue) Len() int {
	return q.tasks.Len()
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].before(h[j])
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return t
}
