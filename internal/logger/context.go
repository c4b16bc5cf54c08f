package logger

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// FromCtx returns the global logger tagged with the request id, if the
// context carries one.
func FromCtx(ctx context.Context) *zap.Logger {
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		return L()
	}
	return L().With(zap.String("request_id", reqID))
}
