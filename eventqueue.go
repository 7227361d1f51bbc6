package gocqx

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Event is a single completion record delivered through an EventQueue.  OK
// mirrors the success flag of the underlying transport event; a false value
// indicates the native work completed unsuccessfully (for instance a timer
// that was torn down rather than fired).
type Event struct {
	Tag Tag
	OK  bool
}

// EventQueue is the native completion mechanism this core drains.  It is a
// blocking multi-producer multi-consumer queue of completion events.  Any
// number of goroutines may concurrently block in Next, and any number may
// concurrently Post.  Close moves the queue into draining mode: events
// already posted are still delivered, further posts are refused, and Next
// returns ErrEventQueueClosed once the backlog is empty.
type EventQueue struct {
	lock   sync.Mutex
	wait   *sync.Cond
	events []Event
	closed bool
}

func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	q.wait = sync.NewCond(&q.lock)
	return q
}

// Post enqueues a completion event and wakes a blocked consumer.  Posting to
// a closed queue returns ErrEventQueueClosed; the event is dropped and the
// operation it belonged to is picked up by the shutdown drain instead.
func (q *EventQueue) Post(ev Event) error {
	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return ErrEventQueueClosed
	}
	q.events = append(q.events, ev)
	q.lock.Unlock()

	q.wait.Signal()

	return nil
}

// Next blocks until an event is available or the queue is closed and fully
// drained.
func (q *EventQueue) Next() (Event, error) {
	q.lock.Lock()
	for len(q.events) == 0 {
		if q.closed {
			q.lock.Unlock()
			return Event{}, ErrEventQueueClosed
		}
		q.wait.Wait()
	}

	ev := q.events[0]
	q.events = slices.Delete(q.events, 0, 1)
	q.lock.Unlock()

	return ev, nil
}

// Close is idempotent and safe to call from any goroutine, including
// concurrently with blocked Next calls.
func (q *EventQueue) Close() {
	q.lock.Lock()
	q.closed = true
	q.lock.Unlock()

	q.wait.Broadcast()
}
