package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

type requestDataKey struct{}

type RequestData struct {
	RequestID string
}

// WithRequestData attaches a fresh request id to ctx. Attached once per
// request by middleware.AttachRequestContext.
func WithRequestData(ctx context.Context) context.Context {
	data := &RequestData{RequestID: uuid.NewString()}
	return context.WithValue(ctx, requestDataKey{}, data)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, ok := ctx.Value(requestDataKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
