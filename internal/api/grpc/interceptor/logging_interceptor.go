package interceptor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"kos-backend-trusted/internal/logger"
)

type LoggingInterceptor struct {
	// skip lists full method names that are not logged, e.g. health probes.
	skip map[string]bool
}

func NewLoggingInterceptor(skipMethods ...string) *LoggingInterceptor {
	skip := make(map[string]bool, len(skipMethods))
	for _, m := range skipMethods {
		skip[m] = true
	}
	return &LoggingInterceptor{skip: skip}
}

// Unary returns a server interceptor that logs each call and turns handler
// panics and untyped errors into codes.Internal.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in gRPC handler", "method", info.FullMethod, "panic", fmt.Sprint(r))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			if i.skip[info.FullMethod] {
				return
			}
			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
			if id := requestID(ctx); id != "" {
				args = append(args, "request_id", id)
			}
			if code == codes.Internal || code == codes.Unknown {
				logger.Error("gRPC request failed", append(args, "error", err)...)
				return
			}
			logger.Info("gRPC request", args...)
		}()

		resp, err = handler(ctx, req)
		if err != nil {
			err = ToStatus(err)
		}
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if ids := md.Get("x-request-id"); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// ToStatus maps err to a gRPC status error. Errors that already carry a
// status are returned unchanged; anything else that is not a context error
// is reported as codes.Internal without its message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
