package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/pkg/obfuscate"
	"github.com/glatasks/backend/repository"
	listsUC "github.com/glatasks/backend/usecase/lists"
	tasksUC "github.com/glatasks/backend/usecase/tasks"
)

type TaskHandler struct {
	baseHandler
	uc    *tasksUC.UseCase
	codec *obfuscate.Codec
}

func NewTaskHandler(uc *tasksUC.UseCase, codec *obfuscate.Codec, adapter *httpcontext.Adapter, scoper repository.Scoper, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, scoper, logger),
		uc:          uc,
		codec:       codec,
	}
}

// Create serves POST /tasks/{list_id}.
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	listID, ok := h.pathID(ctx, "list_id")
	if !ok {
		return
	}
	var req transport.TaskTextRequest
	if err := transport.DecodeBody(h.codec, ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var task *domain.Task
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		task, err = h.uc.Add(scoped, userID, listID, req.Text)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, listsUC.TaskInfo{
		ID:     task.ID,
		Title:  task.Title(),
		Notes:  task.Notes(),
		Status: task.Status.String(),
	})
}

// Patch serves PATCH /tasks/api/{list_id}/{task_id}: a partial update where
// only the fields present in the body are applied. The response is the flat
// {status, completed, list_id, title, notes} shape the clients expect.
func (h *TaskHandler) Patch(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	listID, ok := h.pathID(ctx, "list_id")
	if !ok {
		return
	}
	taskID, ok := h.pathID(ctx, "task_id")
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if err := transport.DecodeBody(h.codec, ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	patch, err := buildPatch(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var result tasksUC.PatchResult
	err = h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		result, err = h.uc.ApplyPatch(scoped, userID, listID, taskID, patch)
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondRaw(ctx, http.StatusOK, result)
}

func buildPatch(req transport.TaskPatchRequest) (tasksUC.Patch, error) {
	patch := tasksUC.Patch{
		Text:      req.Text,
		KeepOrder: req.KeepOrder,
		Status:    req.Status,
		MoveTo:    req.MoveTo,
	}
	if req.Completed.Set {
		patch.HasCompleted = true
		if req.Completed.Value != nil {
			instant, err := time.Parse(time.RFC3339, *req.Completed.Value)
			if err != nil {
				return tasksUC.Patch{}, domain.WrapError(domain.ErrCodeInvalid, "invalid completed timestamp", err)
			}
			patch.Completed = &instant
		}
	}
	return patch, nil
}
