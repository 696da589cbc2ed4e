package responder

import (
	"container/heap"
	"time"

	"github.com/notexe/medimind/internal/notify"
)

// pendingAlert is an alert waiting for its snooze to run out.
type pendingAlert struct {
	At    time.Time
	Alert notify.Alert
}

// alertHeap implements container/heap.Interface for pendingAlert, earliest
// first.
type alertHeap []pendingAlert

func (h alertHeap) Len() int           { return len(h) }
func (h alertHeap) Less(i, j int) bool { return h[i].At.Before(h[j].At) }
func (h alertHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *alertHeap) Push(x any) {
	*h = append(*h, x.(pendingAlert))
}

func (h *alertHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *alertHeap, p pendingAlert) {
	heap.Push(h, p)
}

// heapPop removes the earliest pending alert. Panics if the heap is empty.
func heapPop(h *alertHeap) pendingAlert {
	return heap.Pop(h).(pendingAlert)
}
