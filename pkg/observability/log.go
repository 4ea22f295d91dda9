package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at warn.
// It implements all three hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ ProjectHooks = LogHooks{}
	_ CacheHooks   = LogHooks{}
	_ HTTPHooks    = LogHooks{}
)

func (h LogHooks) OnImportStart(_ context.Context, source string) {
	h.Logger.Debug("import start", "source", source)
}

func (h LogHooks) OnImportComplete(_ context.Context, source, format string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("import failed", "source", source, "err", err)
		return
	}
	h.Logger.Debug("import done", "source", source, "format", format, "nodes", nodeCount, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnExportStart(_ context.Context, destination, format string) {
	h.Logger.Debug("export start", "destination", destination, "format", format)
}

func (h LogHooks) OnExportComplete(_ context.Context, destination, format string, n int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("export failed", "destination", destination, "err", err)
		return
	}
	h.Logger.Debug("export done", "destination", destination, "format", format, "bytes", n, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "size", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
