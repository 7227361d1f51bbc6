package grpcx

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/taggedio/gocqx"
)

// RecvStream matches the receive side of a generated gRPC server-streaming
// client.
type RecvStream[RespT any] interface {
	Recv() (RespT, error)
}

// streamReader maps the gRPC stream termination convention (io.EOF from Recv
// on a clean end, a status error otherwise) onto the reader contract the
// streaming read operation drives.
type streamReader[RespT any] struct {
	stream  RecvStream[RespT]
	recvErr error
}

func (r *streamReader[RespT]) Recv() (RespT, error) {
	resp, err := r.stream.Recv()
	if err != nil {
		r.recvErr = err
	}
	return resp, err
}

func (r *streamReader[RespT]) Finish() error {
	if r.recvErr == nil || errors.Is(r.recvErr, io.EOF) {
		return nil
	}
	return r.recvErr
}

// StreamingReadCall adapts a generated gRPC server-streaming method to the
// call shape that gocqx.MakeStreamingReadRpc expects.
func StreamingReadCall[RespT any, StreamT RecvStream[RespT]](
	open func(ctx context.Context, opts ...grpc.CallOption) (StreamT, error),
	callOpts ...grpc.CallOption,
) gocqx.StreamingReadCall[RespT] {
	return func(ctx context.Context) (gocqx.StreamingReader[RespT], error) {
		stream, err := open(ctx, callOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open server stream")
		}

		return &streamReader[RespT]{stream: stream}, nil
	}
}
