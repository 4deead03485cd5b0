package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/glatasks/backend/api/transport"
	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/repository"
	listsUC "github.com/glatasks/backend/usecase/lists"
	tasksUC "github.com/glatasks/backend/usecase/tasks"
)

type ShareHandler struct {
	baseHandler
	lists *listsUC.UseCase
	tasks *tasksUC.UseCase
}

func NewShareHandler(lists *listsUC.UseCase, tasks *tasksUC.UseCase, adapter *httpcontext.Adapter, scoper repository.Scoper, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		baseHandler: newBaseHandler(adapter, scoper, logger),
		lists:       lists,
		tasks:       tasks,
	}
}

// Ingest serves GET /share/ingest: a task body composed from an Android
// share intent. With list_id the task is added directly; without it the
// composed text is returned together with the user's visible lists so the
// client can pick a target.
func (h *ShareHandler) Ingest(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	text := tasksUC.ComposeShareText(
		string(args.Peek("title")),
		string(args.Peek("text")),
		string(args.Peek("url")),
	)
	if text == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "nothing to ingest", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if listID, err := args.GetUint("list_id"); err == nil && listID > 0 {
		var task *domain.Task
		err := h.inScope(stdCtx, func(scoped context.Context) error {
			var err error
			task, err = h.tasks.Add(scoped, userID, int64(listID), text)
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
		return
	}

	var overview listsUC.OverviewResult
	err := h.inScope(stdCtx, func(scoped context.Context) error {
		var err error
		overview, err = h.lists.Overview(scoped, userID, listsUC.ShowList, "")
		return err
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"text":  text,
		"lists": overview.Lists,
	})
}
