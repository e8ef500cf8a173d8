package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call with its status code. Health
// checks are logged at debug level since probes call them constantly.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration_ms", time.Since(start).Milliseconds()}
	switch {
	case err != nil:
		s.logger.Warn(ctx, "grpc call failed", append(args, "error", err)...)
	case info.FullMethod == "/grpc.health.v1.Health/Check":
		s.logger.Debug(ctx, "grpc call", args...)
	default:
		s.logger.Info(ctx, "grpc call", args...)
	}
	return resp, err
}
