package gocqx

import (
	"context"
	"errors"

	"github.com/googleapis/gax-go/v2"
)

// RetryOptions controls RetryUnaryRpc.  The zero value of Backoff uses the
// gax defaults.  ShouldRetry decides whether a failed attempt is retried;
// when nil, no error is retried and the helper behaves like MakeUnaryRpc.
// Cancellation and shutdown errors are never retried regardless of
// ShouldRetry.  MaxAttempts of 0 means unlimited attempts.
type RetryOptions struct {
	Backoff     gax.Backoff
	ShouldRetry func(err error) bool
	MaxAttempts int
}

// RetryUnaryRpc issues call through the queue, retrying failed attempts with
// backoff pauses scheduled as relative timers on the same queue.  The
// returned future resolves with the first successful response, or with the
// last attempt's error once retries are exhausted.
func RetryUnaryRpc[ReqT any, RespT any](
	cq CompletionQueue,
	ctx context.Context,
	call UnaryCall[ReqT, RespT],
	req ReqT,
	opts RetryOptions,
) *Future[RespT] {
	future := newFuture[RespT]()
	var emptyResp RespT

	go func() {
		backoff := opts.Backoff

		for attempt := 1; ; attempt++ {
			attemptFuture, _ := MakeUnaryRpc(cq, ctx, call, req)
			resp, err := attemptFuture.Wait(ctx)
			if err == nil {
				future.complete(resp, nil)
				return
			}

			if errors.Is(err, ErrQueueShutdown) || errors.Is(err, ErrOperationCancelled) ||
				ctx.Err() != nil {
				future.complete(emptyResp, err)
				return
			}
			if opts.ShouldRetry == nil || !opts.ShouldRetry(err) {
				future.complete(emptyResp, err)
				return
			}
			if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
				future.complete(emptyResp, err)
				return
			}

			pauseFuture, _ := cq.MakeRelativeTimer(backoff.Pause())
			if _, pauseErr := pauseFuture.Wait(ctx); pauseErr != nil {
				future.complete(emptyResp, err)
				return
			}
		}
	}()

	return future
}
