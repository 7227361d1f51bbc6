package grpcx

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultRetriableCodes are the status codes IsRetriable treats as transient
// when no explicit set is supplied.
var DefaultRetriableCodes = []codes.Code{
	codes.Unavailable,
	codes.ResourceExhausted,
}

// IsRetriable reports whether err represents a transient RPC failure worth
// retrying.  Context cancellation and deadline errors are never retriable,
// regardless of the code set.
func IsRetriable(err error, retriableCodes ...codes.Code) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if len(retriableCodes) == 0 {
		retriableCodes = DefaultRetriableCodes
	}

	code := status.Code(err)
	for _, retriableCode := range retriableCodes {
		if code == retriableCode {
			return true
		}
	}

	return false
}
