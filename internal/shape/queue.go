package shape

import "container/heap"

// Compile time check to ensure shapeHeap satisfies the heap interface.
var _ heap.Interface = (*shapeHeap)(nil)

type queued struct {
	shape *Shape
	seq   int
}

type shapeHeap []queued

func (h shapeHeap) Len() int { return len(h) }

func (h shapeHeap) Less(i, j int) bool {
	if h[i].shape.priority != h[j].shape.priority {
		return h[i].shape.priority < h[j].shape.priority
	}
	return h[i].seq < h[j].seq
}

func (h shapeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *shapeHeap) Push(x any) { *h = append(*h, x.(queued)) }

func (h *shapeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queued{} // avoid memory leak
	*h = old[:n-1]
	return item
}

// Queue is a min-priority queue of shapes. Shapes of equal priority leave
// in insertion order. A Queue belongs to a single render request.
type Queue struct {
	h   shapeHeap
	seq int
}

// NewQueue returns an empty queue with room for n shapes.
func NewQueue(n int) *Queue {
	return &Queue{h: make(shapeHeap, 0, n)}
}

// Push adds s to the queue.
func (q *Queue) Push(s *Shape) {
	heap.Push(&q.h, queued{shape: s, seq: q.seq})
	q.seq++
}

// Pop removes and returns the shape with the smallest priority, or nil when
// the queue is empty.
func (q *Queue) Pop() *Shape {
	if len(q.h) == 0 {
		return nil
	}
	return heap.Pop(&q.h).(queued).shape
}

// Len returns the number of queued shapes.
func (q *Queue) Len() int {
	return len(q.h)
}
