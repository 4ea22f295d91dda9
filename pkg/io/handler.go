package io

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/sink"
)

// DefaultMaxSize limits how many bytes an import reads.
const DefaultMaxSize = 64 << 20

// Handler imports and exports projects. It holds no project state; the
// zero value is usable and logs nowhere.
type Handler struct {
	Logger   *log.Logger
	Resolver *sink.Resolver
	MaxSize  int64 // 0 means DefaultMaxSize
}

// New creates a handler. A nil resolver resolves files and stdout only.
func New(logger *log.Logger, resolver *sink.Resolver) *Handler {
	return &Handler{Logger: logger, Resolver: resolver}
}

func (h *Handler) logger() *log.Logger {
	if h.Logger == nil {
		return log.New(io.Discard)
	}
	return h.Logger
}

func (h *Handler) resolver() *sink.Resolver {
	if h.Resolver == nil {
		return &sink.Resolver{}
	}
	return h.Resolver
}

func (h *Handler) maxSize() int64 {
	if h.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return h.MaxSize
}

// Option adjusts how a document is imported.
type Option func(*options)

type options struct {
	name     string
	location string
	format   document.Format
}

// WithName sets the project name. By default it derives from the location.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLocation records where the data came from, e.g. the fetched URL.
func WithLocation(location string) Option {
	return func(o *options) { o.location = location }
}

// WithFormat forces the document format instead of detecting it.
func WithFormat(f document.Format) Option {
	return func(o *options) { o.format = f }
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
