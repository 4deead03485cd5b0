package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/internal/middleware"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/repository"
	authUC "github.com/glatasks/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc        *authUC.UseCase
	cookieTTL time.Duration
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, scoper repository.Scoper, logger *zap.Logger, cookieTTL time.Duration) *AuthHandler {
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, scoper, logger),
		uc:          uc,
		cookieTTL:   cookieTTL,
	}
}

// LoginForm describes the login payload. The browser variants render a
// template here; this API serves the field list instead.
func (h *AuthHandler) LoginForm(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"action": "POST /auth/login",
		"fields": []string{"user", "password"},
	})
}

// Login checks credentials and issues the session cookie.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.User == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		user  *domain.User
		token string
	)
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		user, token, err = h.uc.Login(scoped, req.User, req.Password)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, token)
	h.respondSuccess(ctx, http.StatusOK, transport.UserInfo{ID: user.ID, User: user.Handle})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	token := string(ctx.Request.Header.Cookie(middleware.SessionCookie))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if token != "" {
		if err := h.uc.Logout(stdCtx, token); err != nil {
			h.logger.Warn("logout failed", zap.Error(err))
		}
	}
	h.clearSessionCookie(ctx)
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// RegisterForm mirrors LoginForm for the registration payload.
func (h *AuthHandler) RegisterForm(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"action": "POST /auth/regist_user",
		"fields": []string{"user_id", "password"},
	})
}

// Register creates an account from the public registration endpoint.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	user, ok := h.register(ctx)
	if !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.UserInfo{ID: user.ID, User: user.Handle})
}

// ValidateInternal serves the x-api-key guarded credential check used by the
// frontend service. The response is flat {id, user}.
func (h *AuthHandler) ValidateInternal(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.User == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var user *domain.User
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		user, err = h.uc.Validate(scoped, req.User, req.Password)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondRaw(ctx, http.StatusOK, transport.UserInfo{ID: user.ID, User: user.Handle})
}

// RegisterInternal is the x-api-key guarded twin of Register.
func (h *AuthHandler) RegisterInternal(ctx *fasthttp.RequestCtx) {
	user, ok := h.register(ctx)
	if !ok {
		return
	}
	h.respondRaw(ctx, http.StatusOK, transport.UserInfo{ID: user.ID, User: user.Handle})
}

func (h *AuthHandler) register(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return nil, false
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var user *domain.User
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		user, err = h.uc.Register(scoped, req.UserID, req.Password)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, token string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.SessionCookie)
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(time.Now().Add(h.cookieTTL))
	ctx.Response.Header.SetCookie(cookie)
}

func (h *AuthHandler) clearSessionCookie(ctx *fasthttp.RequestCtx) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(middleware.SessionCookie)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}
