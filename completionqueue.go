package gocqx

import (
	"time"

	"go.uber.org/zap"
)

// CompletionQueue is a lightweight, copyable handle over a shared
// CompletionQueueImpl.  Copies share the same underlying queue and registry.
//
// Run may be called concurrently from multiple goroutines to form a worker
// pool; any worker may end up executing any operation's completion, so
// callbacks must not assume a particular goroutine identity beyond the
// per-stream serialization guarantee documented on MakeStreamingReadRpc.
type CompletionQueue struct {
	impl *CompletionQueueImpl
}

type CompletionQueueOptions struct {
	Logger *zap.Logger
}

func NewCompletionQueue(opts *CompletionQueueOptions) CompletionQueue {
	if opts == nil {
		opts = &CompletionQueueOptions{}
	}

	return CompletionQueue{
		impl: NewCompletionQueueImpl(&CompletionQueueImplOptions{
			Logger: opts.Logger,
		}),
	}
}

// Impl exposes the underlying implementation, primarily so that tests can
// reach SimulateCompletion.
func (cq CompletionQueue) Impl() *CompletionQueueImpl {
	return cq.impl
}

// Run drains completion events until the queue is shut down.  See
// CompletionQueueImpl.Run.
func (cq CompletionQueue) Run() {
	cq.impl.Run()
}

// Shutdown shuts down the underlying queue.  Idempotent and callable from
// any goroutine.
func (cq CompletionQueue) Shutdown() {
	cq.impl.Shutdown()
}

// MakeDeadlineTimer returns a future which resolves with the deadline once
// it has passed, or with a cancellation error if the returned handle is
// cancelled first.
func (cq CompletionQueue) MakeDeadlineTimer(deadline time.Time) (*Future[time.Time], PendingOp) {
	return makeTimer(cq.impl, deadline, time.Until(deadline))
}

// MakeRelativeTimer is MakeDeadlineTimer with the deadline computed as now
// plus duration.  Negative durations fire immediately.
func (cq CompletionQueue) MakeRelativeTimer(duration time.Duration) (*Future[time.Time], PendingOp) {
	return makeTimer(cq.impl, time.Now().Add(duration), duration)
}

// RunAsync schedules fn to run on one of the goroutines draining this queue,
// passing it a fresh handle bound to the same impl.  Tasks are interleaved
// with all other completions with no special priority.  If the queue is shut
// down before the task is dispatched, the task is dropped.
func (cq CompletionQueue) RunAsync(fn func(cq CompletionQueue)) {
	op := &taskOperation{
		impl: cq.impl,
		fn:   fn,
	}

	tag := cq.impl.RegisterOperation(op)

	// A post failure means the queue closed concurrently; the operation is
	// already registered, so the shutdown drain resolves it.
	_ = cq.impl.Queue().Post(Event{Tag: tag, OK: true})
}
