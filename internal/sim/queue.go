package sim

import "sync"

// Queue is a concurrent priority-ordered mailbox. Units push events from
// their own goroutines; the coordinator is the sole consumer.
//
// Events are held as a singly linked list ordered by priority, ties broken
// by arrival (oldest first). Push scans past every node whose priority is
// greater than or equal to the new event's, so an equal-priority event lands
// behind all events already waiting at that priority. Pop removes the head.
// O(n) push, O(1) pop; n is bounded by the number of units, each of which
// emits at most one event per cycle.
//
// The queue's lock is its own, independent of resource locks, so pushes
// never contend with unrelated resource mutations.
type Queue struct {
	mu   sync.Mutex
	head *queueNode
	size int
}

type queueNode struct {
	event Event
	next  *queueNode
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push inserts an event keyed by priority, behind all events of equal
// priority. Safe to call from any goroutine.
func (q *Queue) Push(ev Event) {
	node := &queueNode{event: ev}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == nil || ev.Priority > q.head.event.Priority {
		node.next = q.head
		q.head = node
		q.size++
		return
	}

	cur := q.head
	for cur.next != nil && cur.next.event.Priority >= ev.Priority {
		cur = cur.next
	}
	node.next = cur.next
	cur.next = node
	q.size++
}

// Pop removes and returns the highest-priority, then-oldest event.
// Never blocks: an empty queue returns ok=false.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == nil {
		return Event{}, false
	}
	node := q.head
	q.head = node.next
	q.size--
	return node.event, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
