package gocqx

import (
	"errors"
)

var (
	ErrQueueShutdown      = errors.New("completion queue was shut down")
	ErrOperationCancelled = errors.New("operation was cancelled")
	ErrEventQueueClosed   = errors.New("event queue is closed")
)

type operationCancelledError struct {
	cause error
}

func (e operationCancelledError) Error() string {
	return "operation was cancelled: " + e.cause.Error()
}

func (e operationCancelledError) Unwrap() error {
	return e.cause
}

func (e operationCancelledError) Is(target error) bool {
	return target == ErrOperationCancelled
}
