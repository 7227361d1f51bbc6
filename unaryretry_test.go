package gocqx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

var errUnavailable = errors.New("service unavailable")

func retryTestBackoff() gax.Backoff {
	return gax.Backoff{
		Initial:    1 * time.Millisecond,
		Max:        5 * time.Millisecond,
		Multiplier: 2,
	}
}

func TestRetryUnaryRpcEventualSuccess(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	var attempts atomic.Int64
	call := func(ctx context.Context, req string) (string, error) {
		if attempts.Inc() < 3 {
			return "", errUnavailable
		}
		return "resp", nil
	}

	future := RetryUnaryRpc(cq, context.Background(), call, "req", RetryOptions{
		Backoff: retryTestBackoff(),
		ShouldRetry: func(err error) bool {
			return errors.Is(err, errUnavailable)
		},
	})

	resp, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Equal(t, int64(3), attempts.Load())

	cq.Shutdown()
	wg.Wait()
}

func TestRetryUnaryRpcAttemptsExhausted(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	var attempts atomic.Int64
	call := func(ctx context.Context, req string) (string, error) {
		attempts.Inc()
		return "", errUnavailable
	}

	future := RetryUnaryRpc(cq, context.Background(), call, "req", RetryOptions{
		Backoff: retryTestBackoff(),
		ShouldRetry: func(err error) bool {
			return errors.Is(err, errUnavailable)
		},
		MaxAttempts: 2,
	})

	_, err := future.Wait(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, int64(2), attempts.Load())

	cq.Shutdown()
	wg.Wait()
}

func TestRetryUnaryRpcNoRetryPredicate(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	var attempts atomic.Int64
	call := func(ctx context.Context, req string) (string, error) {
		attempts.Inc()
		return "", errUnavailable
	}

	future := RetryUnaryRpc(cq, context.Background(), call, "req", RetryOptions{
		Backoff: retryTestBackoff(),
	})

	_, err := future.Wait(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, int64(1), attempts.Load())

	cq.Shutdown()
	wg.Wait()
}

func TestRetryUnaryRpcShutdownStopsRetries(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	call := func(ctx context.Context, req string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	future := RetryUnaryRpc(cq, context.Background(), call, "req", RetryOptions{
		Backoff:     retryTestBackoff(),
		ShouldRetry: func(err error) bool { return true },
	})

	cq.Shutdown()
	wg.Wait()

	_, err := future.Wait(context.Background())
	assert.ErrorIs(t, err, ErrQueueShutdown)
}
