package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
)

// SessionCookie is the name of the login cookie holding the signed session token.
const SessionCookie = "glatasks_session"

const userIDKey = "auth_user_id"

// TokenResolver maps a cookie token to the authenticated user. Implemented by
// the auth use case.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(userIDKey).(int64)
	return id, ok
}

// Auth admits requests carrying either a valid session cookie (browser
// variant) or the internal x-api-key/x-user-id header pair (service variant).
func Auth(resolver TokenResolver, internalKey []byte, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if apiKey := ctx.Request.Header.Peek("x-api-key"); len(apiKey) > 0 {
				if !keyMatches(apiKey, internalKey) {
					reject(ctx, http.StatusForbidden, domain.ErrCodeForbidden, "bad api key")
					return
				}
				userID, err := strconv.ParseInt(string(ctx.Request.Header.Peek("x-user-id")), 10, 64)
				if err != nil {
					reject(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing user id")
					return
				}
				ctx.SetUserValue(userIDKey, userID)
				next(ctx)
				return
			}

			token := string(ctx.Request.Header.Cookie(SessionCookie))
			if token == "" {
				reject(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "login required")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			user, err := resolver.ResolveToken(stdCtx, token)
			if err != nil {
				logger.Debug("session token rejected", zap.Error(err))
				reject(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "login required")
				return
			}
			ctx.SetUserValue(userIDKey, user.ID)
			next(ctx)
		}
	}
}

// InternalOnly guards the internal auth endpoints with the shared api key.
func InternalOnly(internalKey []byte) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if !keyMatches(ctx.Request.Header.Peek("x-api-key"), internalKey) {
				reject(ctx, http.StatusForbidden, domain.ErrCodeForbidden, "bad api key")
				return
			}
			next(ctx)
		}
	}
}

func keyMatches(candidate, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}

func reject(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(transport.NewError(string(code), message, nil).String())
}
