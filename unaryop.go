package gocqx

import (
	"context"
	"sync"
)

// UnaryCall is the shape of an asynchronous unary invocation.  MakeUnaryRpc
// accepts any callable of this shape, which gives the compile-time contract
// between request, response and future types.
type UnaryCall[ReqT any, RespT any] func(ctx context.Context, req ReqT) (RespT, error)

type unaryRpcOperation[RespT any] struct {
	future    *Future[RespT]
	cancelCtx context.CancelFunc

	resultLock sync.Mutex
	resp       RespT
	err        error
}

func (op *unaryRpcOperation[RespT]) storeResult(resp RespT, err error) {
	op.resultLock.Lock()
	op.resp = resp
	op.err = err
	op.resultLock.Unlock()
}

func (op *unaryRpcOperation[RespT]) Notify(ok bool, err error) bool {
	op.cancelCtx()

	op.resultLock.Lock()
	resp, callErr := op.resp, op.err
	op.resultLock.Unlock()

	if err == nil && !ok {
		if callErr != nil {
			err = callErr
		} else {
			err = ErrOperationCancelled
		}
	}

	if err != nil {
		var emptyResp RespT
		op.future.complete(emptyResp, err)
		return false
	}

	op.future.complete(resp, nil)
	return false
}

type unaryRpcPendingOp[RespT any] struct {
	impl *CompletionQueueImpl
	tag  Tag
	op   *unaryRpcOperation[RespT]
}

func (po unaryRpcPendingOp[RespT]) Cancel(err error) bool {
	// Cancel the in-flight call and resolve the future immediately.  If the
	// call completes anyway, its event arrives after the registry entry has
	// been removed and is dropped as an orphan.
	po.op.cancelCtx()
	return po.impl.cancelOperation(po.tag, err)
}

// MakeUnaryRpc issues exactly one asynchronous invocation of call and
// returns a future which is satisfied exactly once with the response or an
// error.  The call starts immediately; its completion is delivered on
// whichever goroutine is draining the queue.  Cancelling the returned handle
// cancels the context passed to call; if cancellation races with a genuine
// completion, whichever reaches the operation first wins.
func MakeUnaryRpc[ReqT any, RespT any](
	cq CompletionQueue,
	ctx context.Context,
	call UnaryCall[ReqT, RespT],
	req ReqT,
) (*Future[RespT], PendingOp) {
	impl := cq.impl

	callCtx, cancel := context.WithCancel(ctx)
	op := &unaryRpcOperation[RespT]{
		future:    newFuture[RespT](),
		cancelCtx: cancel,
	}

	tag := impl.RegisterOperation(op)
	queue := impl.Queue()

	// Registration only resolves the future inline when the queue was
	// already shut down; in that case there is no point starting the call.
	if _, _, ready := op.future.Poll(); ready {
		return op.future, PendingOpNoop{}
	}

	go func() {
		resp, err := call(callCtx, req)
		op.storeResult(resp, err)

		// A post failure means the queue shut down first; the shutdown
		// drain resolves the operation instead.
		_ = queue.Post(Event{Tag: tag, OK: err == nil})
	}()

	return op.future, unaryRpcPendingOp[RespT]{
		impl: impl,
		tag:  tag,
		op:   op,
	}
}
