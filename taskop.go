package gocqx

// taskOperation is the first-class injection primitive behind RunAsync: an
// operation whose completion event is posted at registration time, so that
// the functor runs on whichever worker dequeues it.
type taskOperation struct {
	impl *CompletionQueueImpl
	fn   func(cq CompletionQueue)
}

func (op *taskOperation) Notify(ok bool, err error) bool {
	if err != nil || !ok {
		// There is no result channel to fail; tasks caught by the shutdown
		// drain are simply dropped.
		op.impl.logger.Debug("dropping queued task")
		return false
	}

	op.fn(CompletionQueue{impl: op.impl})
	return false
}
