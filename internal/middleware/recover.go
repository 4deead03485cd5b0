package middleware

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/domain"
)

// Recover converts panics escaping a handler into a generic 500 response.
// The original failure is logged server-side only; any open storage scope has
// already been rolled back by the scope manager before this fires.
func Recover(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic while handling request",
						zap.Any("panic", r),
						zap.ByteString("path", ctx.Path()),
					)
					reject(ctx, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
				}
			}()
			next(ctx)
		}
	}
}
