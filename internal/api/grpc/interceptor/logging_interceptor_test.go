package interceptor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"Cancelled", context.Canceled, codes.Canceled},
		{"Wrapped deadline", fmt.Errorf("ping store: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"Status passes through", status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{"Unknown error", errors.New("disk full"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)))
		})
	}
	assert.NoError(t, ToStatus(nil))
}

func TestLoggingInterceptor_Unary(t *testing.T) {
	unary := NewLoggingInterceptor().Unary()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("Success", func(t *testing.T) {
		resp, err := unary(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "ok", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("Status error kept", func(t *testing.T) {
		_, err := unary(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, status.Error(codes.NotFound, "unknown service")
		})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("Plain error hidden", func(t *testing.T) {
		_, err := unary(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, errors.New("connection refused")
		})
		assert.Equal(t, codes.Internal, status.Code(err))
		assert.Equal(t, "internal error", status.Convert(err).Message())
	})

	t.Run("Panic recovered", func(t *testing.T) {
		resp, err := unary(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
