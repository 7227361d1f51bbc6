package gocqx

import (
	"time"
)

// timerOperation resolves its future with the deadline when the underlying
// timer fires, or with a failure when cancelled or drained at shutdown.
type timerOperation struct {
	deadline time.Time
	future   *Future[time.Time]
	timer    *time.Timer
}

func (op *timerOperation) Notify(ok bool, err error) bool {
	// The timer handle is deliberately not touched here; Notify can run
	// concurrently with its assignment when the timer fires immediately.
	// An already-resolved operation firing later just posts an orphan.
	if err == nil && !ok {
		err = ErrOperationCancelled
	}

	if err != nil {
		op.future.complete(time.Time{}, err)
		return false
	}

	op.future.complete(op.deadline, nil)
	return false
}

type timerPendingOp struct {
	impl *CompletionQueueImpl
	tag  Tag
	op   *timerOperation
}

func (po timerPendingOp) Cancel(err error) bool {
	// Stopping the timer is best-effort; if it already fired, the posted
	// event races with this cancellation and the registry entry guard
	// resolves whichever lands first.
	po.op.timer.Stop()
	return po.impl.cancelOperation(po.tag, err)
}

func makeTimer(impl *CompletionQueueImpl, deadline time.Time, duration time.Duration) (*Future[time.Time], PendingOp) {
	op := &timerOperation{
		deadline: deadline,
		future:   newFuture[time.Time](),
	}

	tag := impl.RegisterOperation(op)

	queue := impl.Queue()
	op.timer = time.AfterFunc(duration, func() {
		// A post failure means the queue shut down first; the shutdown drain
		// resolves the operation instead.
		_ = queue.Post(Event{Tag: tag, OK: true})
	})

	return op.future, timerPendingOp{
		impl: impl,
		tag:  tag,
		op:   op,
	}
}
