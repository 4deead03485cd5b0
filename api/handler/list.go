package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/pkg/obfuscate"
	"github.com/glatasks/backend/repository"
	listsUC "github.com/glatasks/backend/usecase/lists"
)

type ListHandler struct {
	baseHandler
	uc    *listsUC.UseCase
	codec *obfuscate.Codec
}

func NewListHandler(uc *listsUC.UseCase, codec *obfuscate.Codec, adapter *httpcontext.Adapter, scoper repository.Scoper, logger *zap.Logger) *ListHandler {
	return &ListHandler{
		baseHandler: newBaseHandler(adapter, scoper, logger),
		uc:          uc,
		codec:       codec,
	}
}

// Overview serves GET /lists/api/{show_type}: list summaries without tasks,
// obfuscated, with a Last-Modified header and 304 support.
func (h *ListHandler) Overview(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	showType, _ := ctx.UserValue("key").(string)
	ifModifiedSince := string(ctx.Request.Header.Peek(fasthttp.HeaderIfModifiedSince))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var result listsUC.OverviewResult
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		result, err = h.uc.Overview(scoped, userID, showType, ifModifiedSince)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if result.NotModified {
		ctx.SetStatusCode(http.StatusNotModified)
		return
	}

	encoded, err := h.codec.EncodeObject(result.Lists)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if result.LastModified != "" {
		ctx.Response.Header.Set(fasthttp.HeaderLastModified, result.LastModified)
	}
	h.respondRaw(ctx, http.StatusOK, transport.Obfuscated{Data: encoded})
}

// Tasks serves GET /lists/api/{list_id}/tasks[/{show_type}].
func (h *ListHandler) Tasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	listID, ok := h.pathID(ctx, "key")
	if !ok {
		return
	}
	showType, _ := ctx.UserValue("show_type").(string)
	if showType == "" {
		showType = listsUC.ShowList
	}
	ifModifiedSince := string(ctx.Request.Header.Peek(fasthttp.HeaderIfModifiedSince))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var result listsUC.TasksResult
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		result, err = h.uc.Tasks(scoped, userID, listID, showType, ifModifiedSince)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if result.NotModified {
		ctx.SetStatusCode(http.StatusNotModified)
		return
	}

	encoded, err := h.codec.EncodeObject(result.Tasks)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Response.Header.Set(fasthttp.HeaderLastModified, result.LastModified)
	h.respondRaw(ctx, http.StatusOK, transport.Obfuscated{Data: encoded})
}

// Create serves POST /lists/post.
func (h *ListHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.ListTitleRequest
	if err := transport.DecodeBody(h.codec, ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var list *domain.List
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		list, err = h.uc.Create(scoped, userID, req.Title)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, listsUC.Info{ID: list.ID, Title: list.Title})
}

// Rename serves POST /lists/{id}/rename.
func (h *ListHandler) Rename(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	listID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.ListTitleRequest
	if err := transport.DecodeBody(h.codec, ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.mutate(ctx, func(scoped context.Context) error {
		return h.uc.Rename(scoped, userID, listID, req.Title)
	})
}

// Hide serves POST /lists/{id}/hide.
func (h *ListHandler) Hide(ctx *fasthttp.RequestCtx) {
	h.simpleMutation(ctx, h.uc.Hide)
}

// Show serves POST /lists/{id}/show.
func (h *ListHandler) Show(ctx *fasthttp.RequestCtx) {
	h.simpleMutation(ctx, h.uc.Show)
}

// Clear serves POST /lists/{id}/clear.
func (h *ListHandler) Clear(ctx *fasthttp.RequestCtx) {
	h.simpleMutation(ctx, h.uc.Clear)
}

// Delete serves POST /lists/{id}/delete.
func (h *ListHandler) Delete(ctx *fasthttp.RequestCtx) {
	h.simpleMutation(ctx, h.uc.Delete)
}

func (h *ListHandler) simpleMutation(ctx *fasthttp.RequestCtx, op func(ctx context.Context, userID, listID int64) error) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	listID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	h.mutate(ctx, func(scoped context.Context) error {
		return op(scoped, userID, listID)
	})
}

func (h *ListHandler) mutate(ctx *fasthttp.RequestCtx, fn func(ctx context.Context) error) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.inScope(stdCtx, fn); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
