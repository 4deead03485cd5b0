package handler

import (
	"bufio"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type SandboxHandler struct {
	logger *zap.Logger
}

func NewSandboxHandler(logger *zap.Logger) *SandboxHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SandboxHandler{logger: logger}
}

// SSE serves GET /sandbox/sse, a fixed event stream kept around for
// exercising client-side EventSource handling.
func (h *SandboxHandler) SSE(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		for _, event := range []string{"foo", "bar", "baz"} {
			fmt.Fprintf(w, "data: %s\n\n", event)
			if err := w.Flush(); err != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		_ = w.Flush()
	})
}
