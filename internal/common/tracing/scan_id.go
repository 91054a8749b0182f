package tracing

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var scanIDCtxKey = ctxKey{}

// WithScanID tags ctx with a fresh time-ordered scan id unless it already
// carries one.
func WithScanID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(scanIDCtxKey).(string); ok {
		return ctx
	}

	return context.WithValue(ctx, scanIDCtxKey, newScanID())
}

func GetScanID(ctx context.Context) string {
	scanID, ok := ctx.Value(scanIDCtxKey).(string)
	if !ok {
		return ""
	}

	return scanID
}

func newScanID() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v.String()
}
