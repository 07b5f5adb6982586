package api

import (
	"context"
	"time"

	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// UnaryInterceptor converts service errors to gRPC statuses, records
// request metrics and logs internal failures.
func UnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		err = rpc.ToStatus(err)

		code := grpcstatus.Code(err)
		metrics.RPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		metrics.RPCDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

		if code == codes.Internal || code == codes.Unavailable {
			logger.Warn("rpc failed", zap.String("method", info.FullMethod), zap.Stringer("code", code), zap.Error(err))
		}
		return resp, err
	}
}

// StreamInterceptor converts errors returned by streaming handlers.
func StreamInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		logger.Debug("stream opened", zap.String("method", info.FullMethod))
		err := rpc.ToStatus(handler(srv, ss))
		logger.Debug("stream closed", zap.String("method", info.FullMethod), zap.Error(err))
		return err
	}
}
