package grpcx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestUnaryCallBindsOptions(t *testing.T) {
	var sawOpts int
	method := func(ctx context.Context, req string, opts ...grpc.CallOption) (string, error) {
		sawOpts = len(opts)
		return "resp:" + req, nil
	}

	call := UnaryCall(method, grpc.WaitForReady(true))

	resp, err := call(context.Background(), "req")
	require.NoError(t, err)
	assert.Equal(t, "resp:req", resp)
	assert.Equal(t, 1, sawOpts)
}
