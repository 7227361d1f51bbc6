package grpcx

import (
	"context"

	"google.golang.org/grpc"

	"github.com/taggedio/gocqx"
)

// UnaryCall adapts a generated gRPC client method to the call shape that
// gocqx.MakeUnaryRpc expects, binding any call options up front.
func UnaryCall[ReqT any, RespT any](
	fn func(ctx context.Context, req ReqT, opts ...grpc.CallOption) (RespT, error),
	callOpts ...grpc.CallOption,
) gocqx.UnaryCall[ReqT, RespT] {
	return func(ctx context.Context, req ReqT) (RespT, error) {
		return fn(ctx, req, callOpts...)
	}
}
