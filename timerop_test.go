package gocqx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerFiresAfterDeadline(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	start := time.Now()
	future, _ := cq.MakeRelativeTimer(2 * time.Millisecond)

	deadline, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, deadline.Before(start.Add(2*time.Millisecond)))

	cq.Shutdown()
	wg.Wait()
}

func TestTimerDeadlineVariant(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	deadline := time.Now().Add(2 * time.Millisecond)
	future, _ := cq.MakeDeadlineTimer(deadline)

	firedAt, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, deadline, firedAt)

	cq.Shutdown()
	wg.Wait()
}

func TestTimerNegativeDurationFiresImmediately(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	future, _ := cq.MakeRelativeTimer(-5 * time.Millisecond)

	_, err := future.Wait(context.Background())
	require.NoError(t, err)

	cq.Shutdown()
	wg.Wait()
}

// Drives the dispatch path without any Run workers or real timing by
// completing a very long timer through SimulateCompletion.
func TestTimerSimulatedCompletion(t *testing.T) {
	cq := NewCompletionQueue(nil)

	future, pendingOp := cq.MakeRelativeTimer(20000 * time.Millisecond)

	_, _, ready := future.Poll()
	require.False(t, ready)

	tag := pendingOp.(timerPendingOp).tag
	require.True(t, cq.Impl().SimulateCompletion(tag, true))

	deadline, err, ready := future.Poll()
	require.True(t, ready)
	require.NoError(t, err)
	assert.False(t, deadline.IsZero())

	cq.Shutdown()
}

func TestTimerCancellation(t *testing.T) {
	cq := NewCompletionQueue(nil)

	expectedErr := errors.New("some error")
	future, pendingOp := cq.MakeRelativeTimer(20000 * time.Millisecond)

	require.True(t, pendingOp.Cancel(expectedErr))

	_, err, ready := future.Poll()
	require.True(t, ready)
	assert.ErrorIs(t, err, expectedErr)
	assert.ErrorIs(t, err, ErrOperationCancelled)

	cq.Shutdown()
}

// This test just tests that cancelling an already fired timer doesn't do
// anything weird.
func TestTimerCancellationAfterFire(t *testing.T) {
	cq := NewCompletionQueue(nil)
	wg := runWorkers(cq, 1)

	future, pendingOp := cq.MakeRelativeTimer(1 * time.Millisecond)

	_, err := future.Wait(context.Background())
	require.NoError(t, err)

	assert.False(t, pendingOp.Cancel(errors.New("some error")))

	cq.Shutdown()
	wg.Wait()
}
