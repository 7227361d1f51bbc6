package gocqx

import "sync"

// Tag is the opaque identifier correlating a completion event to the
// operation that issued it.  Tags are allocated by the registry from a
// monotonic counter and are never reused while their operation is pending.
type Tag uint64

// AsyncOperation is implemented by every unit of asynchronous work that can
// be registered with a completion queue.  Notify is invoked with the outcome
// of a completion event; ok indicates whether the underlying event succeeded
// and err carries cancellation or shutdown causes.  Returning true indicates
// the operation expects further completions and must stay registered.
type AsyncOperation interface {
	Notify(ok bool, err error) bool
}

// PendingOp is a handle to an in-flight operation which allows the caller to
// request its cancellation.  Returns true if the cancellation took effect,
// false if the operation had already completed.
type PendingOp interface {
	Cancel(err error) bool
}

// PendingOpNoop is returned in cases where an operation completed before a
// cancellable handle could be usefully constructed.
type PendingOpNoop struct{}

func (PendingOpNoop) Cancel(err error) bool { return false }

// opEntry wraps a registered operation with an invocation guard which
// upholds two properties: a single operation is never notified concurrently,
// and once an operation has been notified with an error or has indicated it
// expects no further completions, it is never notified again.
type opEntry struct {
	lock sync.Mutex
	op   AsyncOperation
}

func (e *opEntry) notify(ok bool, err error) (bool, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.op == nil {
		return false, false
	}

	more := e.op.Notify(ok, err)
	if err != nil || !more {
		e.op = nil
	}

	return more, true
}
