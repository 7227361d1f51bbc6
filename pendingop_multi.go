package gocqx

import (
	"errors"
	"sync"
)

// MultiPendingOp aggregates several pending operations behind a single
// cancellable handle, for call-sites that race a group of operations (for
// instance an RPC against a deadline timer) and want to tear down the losers
// together.
type MultiPendingOp struct {
	ops       []PendingOp
	lock      sync.Mutex
	cancelErr error
}

func (op *MultiPendingOp) Cancel(err error) bool {
	if err == nil {
		err = errors.New("unspecified cancellation error")
	}

	op.lock.Lock()
	op.cancelErr = err

	// since we guarantee that ops wont be added once cancelErr is set,
	// we can safely reference the existing list of ops for cancelling.
	ops := op.ops

	op.lock.Unlock()

	anyCancelled := false
	for _, pendingOp := range ops {
		anyCancelled = pendingOp.Cancel(err) || anyCancelled
	}

	return anyCancelled
}

// Add registers another operation under this handle.  If the group has
// already been cancelled, the operation is cancelled immediately with the
// original cancellation error.
func (op *MultiPendingOp) Add(opToAdd PendingOp) {
	op.lock.Lock()
	cancelErr := op.cancelErr
	if cancelErr != nil {
		op.lock.Unlock()
		opToAdd.Cancel(cancelErr)
		return
	}

	op.ops = append(op.ops, opToAdd)
	op.lock.Unlock()
}
