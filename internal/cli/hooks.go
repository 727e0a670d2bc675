package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridlayout/pkg/observability"
)

// logHooks forwards observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetEditorHooks(h)
	observability.SetStoreHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnMutation(layoutID, op string, itemCount int) {
	h.logger.Debug("edit", "layout", layoutID, "op", op, "items", itemCount)
}

func (h *logHooks) OnResolve(layoutID, breakpoint string, moved, unresolved int) {
	h.logger.Debug("resolve", "layout", layoutID, "breakpoint", breakpoint, "moved", moved, "unresolved", unresolved)
}

func (h *logHooks) OnLoad(_ context.Context, backend, layoutID string, d time.Duration, err error) {
	h.storeEvent("load", backend, layoutID, d, err)
}

func (h *logHooks) OnSave(_ context.Context, backend, layoutID string, d time.Duration, err error) {
	h.storeEvent("save", backend, layoutID, d, err)
}

func (h *logHooks) storeEvent(op, backend, layoutID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("store "+op+" failed", "backend", backend, "layout", layoutID, "took", d, "error", err)
		return
	}
	h.logger.Debug("store "+op, "backend", backend, "layout", layoutID, "took", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ observability.EditorHooks = (*logHooks)(nil)
	_ observability.StoreHooks  = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
	_ observability.HTTPHooks   = (*logHooks)(nil)
)
