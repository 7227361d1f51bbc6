package gocqx

import (
	"context"

	"go.uber.org/atomic"
)

// StreamingReader is the transport capability a streaming read operation
// drives: repeated Recv calls until an error indicates the stream is done,
// then a single Finish call yielding the terminal status (nil for a clean
// end-of-stream).
type StreamingReader[RespT any] interface {
	Recv() (RespT, error)
	Finish() error
}

// StreamingReadCall opens a server stream.  The supplied context is cancelled
// once the operation reaches its terminal state.
type StreamingReadCall[RespT any] func(ctx context.Context) (StreamingReader[RespT], error)

type streamingReadState uint32

const (
	streamStateStarted streamingReadState = iota
	streamStateReading
	streamStateFinishing
	streamStateFinished
)

// streamingReadOperation drives a server stream through the queue one
// asynchronous step at a time.  At most one transport goroutine is
// outstanding per stream, and the next Recv is only issued after the read
// callback for the previous message has returned, so callbacks for a single
// stream never overlap.
type streamingReadOperation[RespT any] struct {
	queue     *EventQueue
	tag       Tag
	cancelCtx context.CancelFunc
	readCb    func(RespT)
	finishCb  func(err error)

	finished atomic.Bool

	// The fields below are only touched under the registry entry guard, or
	// by the single outstanding transport goroutine whose writes are ordered
	// before the next guard acquisition by the event post.
	state       streamingReadState
	stream      StreamingReader[RespT]
	pendingResp RespT
	pendingErr  error
}

func (op *streamingReadOperation[RespT]) start(ctx context.Context, call StreamingReadCall[RespT]) {
	go func() {
		stream, err := call(ctx)
		op.stream = stream
		op.pendingErr = err
		_ = op.queue.Post(Event{Tag: op.tag, OK: err == nil})
	}()
}

func (op *streamingReadOperation[RespT]) issueRead() {
	go func() {
		resp, err := op.stream.Recv()
		op.pendingResp = resp
		op.pendingErr = err
		_ = op.queue.Post(Event{Tag: op.tag, OK: err == nil})
	}()
}

func (op *streamingReadOperation[RespT]) issueFinish() {
	go func() {
		err := op.stream.Finish()
		op.pendingErr = err
		_ = op.queue.Post(Event{Tag: op.tag, OK: err == nil})
	}()
}

func (op *streamingReadOperation[RespT]) terminate(err error) {
	op.state = streamStateFinished
	op.finished.Store(true)
	op.cancelCtx()
	op.finishCb(err)
}

func (op *streamingReadOperation[RespT]) Notify(ok bool, err error) bool {
	if err != nil {
		// cancellation or shutdown-induced failure; the finish callback is
		// still the single terminal notification.
		op.terminate(err)
		return false
	}

	switch op.state {
	case streamStateStarted:
		if !ok {
			op.terminate(op.pendingErr)
			return false
		}

		op.state = streamStateReading
		op.issueRead()
		return true
	case streamStateReading:
		if !ok {
			// end-of-stream or a read failure; either way the terminal
			// status comes from the finish call.
			op.state = streamStateFinishing
			op.issueFinish()
			return true
		}

		op.readCb(op.pendingResp)
		op.issueRead()
		return true
	case streamStateFinishing:
		if !ok {
			op.terminate(op.pendingErr)
			return false
		}

		op.terminate(nil)
		return false
	}

	return false
}

type streamingReadPendingOp[RespT any] struct {
	op *streamingReadOperation[RespT]
}

// Cancel requests cancellation of the stream.  It does not synchronously
// stop it; the stream's context is cancelled and the next natural completion
// carries the cancelled status through the usual callback sequence, ending
// with the finish callback.  The err argument is not delivered directly; the
// terminal status comes from the transport.
func (po streamingReadPendingOp[RespT]) Cancel(err error) bool {
	if po.op.finished.Load() {
		return false
	}

	po.op.cancelCtx()
	return true
}

// MakeStreamingReadRpc opens a server stream and drives it to completion,
// invoking readCb once per received message and finishCb exactly once with
// the terminal status.  For a single stream only one callback invocation is
// ever in flight; the next read is not issued until the current callback has
// returned.  No read callback is invoked after the finish callback.
func MakeStreamingReadRpc[RespT any](
	cq CompletionQueue,
	ctx context.Context,
	call StreamingReadCall[RespT],
	readCb func(resp RespT),
	finishCb func(err error),
) PendingOp {
	impl := cq.impl

	streamCtx, cancel := context.WithCancel(ctx)
	op := &streamingReadOperation[RespT]{
		queue:     impl.Queue(),
		cancelCtx: cancel,
		readCb:    readCb,
		finishCb:  finishCb,
	}

	op.tag = impl.RegisterOperation(op)

	// Registration only fails an operation inline when the queue was already
	// shut down; in that case the finish callback has fired and there is
	// nothing to start.
	if !op.finished.Load() {
		op.start(streamCtx, call)
	}

	return streamingReadPendingOp[RespT]{op: op}
}
