package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/internal/middleware"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/repository"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	scoper  repository.Scoper
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, scoper repository.Scoper, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scoper == nil {
		scoper = repository.NopScoper{}
	}
	return baseHandler{adapter: adapter, scoper: scoper, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// inScope runs fn inside one storage scope with guaranteed release.
func (h baseHandler) inScope(ctx context.Context, fn func(ctx context.Context) error) error {
	return h.scoper.Run(ctx, fn)
}

func (h baseHandler) userID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "login required", nil))
	}
	return id, ok
}

func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid "+name, nil))
		return 0, false
	}
	return id, true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	h.respondRaw(ctx, status, payload)
}

// respondRaw writes any JSON-marshalable payload; used where the wire format
// is flat rather than enveloped (obfuscated reads, patch results, internal auth).
func (h baseHandler) respondRaw(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Original failure stays in the server log only.
		h.logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
