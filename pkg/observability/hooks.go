// Package observability lets applications watch what the libraries do.
//
// Three hook sets exist: [ProjectHooks] for imports and exports, [CacheHooks]
// for cache lookups and writes, and [HTTPHooks] for remote fetches. Libraries
// report to whatever is registered; until something is, events go to no-op
// implementations.
//
// The CLI's --verbose flag registers [LogHooks] for all three:
//
//	observability.SetAll(observability.LogHooks{Logger: logger})
//
// A library reporting an import:
//
//	observability.Project().OnImportStart(ctx, source)
//	observability.Project().OnImportComplete(ctx, source, format, nodes, took, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ProjectHooks receives events from project import and export.
type ProjectHooks interface {
	OnImportStart(ctx context.Context, source string)
	OnImportComplete(ctx context.Context, source, format string, nodeCount int, duration time.Duration, err error)

	OnExportStart(ctx context.Context, destination, format string)
	OnExportComplete(ctx context.Context, destination, format string, bytesWritten int, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is the kind of cached value
// ("http", "doc", "render").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from document fetches.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError reports a transport failure; HTTP error statuses go to
	// OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// AllHooks implements every hook set.
type AllHooks interface {
	ProjectHooks
	CacheHooks
	HTTPHooks
}

type NoopProjectHooks struct{}

func (NoopProjectHooks) OnImportStart(context.Context, string) {}
func (NoopProjectHooks) OnImportComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopProjectHooks) OnExportStart(context.Context, string, string) {}
func (NoopProjectHooks) OnExportComplete(context.Context, string, string, int, time.Duration, error) {
}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] {
	return &slot[T]{cur: def, def: def}
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// set ignores nil so a missing hook never turns into a nil dereference.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	projectSlot = newSlot[ProjectHooks](NoopProjectHooks{})
	cacheSlot   = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot    = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetProjectHooks registers import/export hooks. Nil is ignored.
func SetProjectHooks(h ProjectHooks) { projectSlot.set(h) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers fetch hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// SetAll registers h for every hook set.
func SetAll(h AllHooks) {
	if h == nil {
		return
	}
	SetProjectHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func Project() ProjectHooks { return projectSlot.get() }
func Cache() CacheHooks     { return cacheSlot.get() }
func HTTP() HTTPHooks       { return httpSlot.get() }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	projectSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
