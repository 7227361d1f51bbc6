package gocqx

import (
	"context"
	"sync"
)

// Future is the one-shot result channel for timer and unary operations.  It
// is completed at most once; later completion attempts are ignored.  Readers
// may block in Wait or check readiness without blocking via Poll.
type Future[T any] struct {
	lock sync.Mutex
	done chan struct{}
	res  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

func (f *Future[T]) complete(res T, err error) bool {
	f.lock.Lock()
	select {
	case <-f.done:
		f.lock.Unlock()
		return false
	default:
	}

	f.res = res
	f.err = err
	close(f.done)
	f.lock.Unlock()

	return true
}

// Done returns a channel which is closed once the future holds a result.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is completed or ctx is done, whichever comes
// first.  Note that a ctx error only abandons the wait, it does not cancel
// the underlying operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		var emptyResp T
		return emptyResp, ctx.Err()
	}
}

// Poll returns the result without blocking.  The third return value is false
// if the future has not been completed yet.
func (f *Future[T]) Poll() (T, error, bool) {
	select {
	case <-f.done:
		return f.res, f.err, true
	default:
		var emptyResp T
		return emptyResp, nil, false
	}
}
