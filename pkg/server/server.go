package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fetchtree/pkg/cache"
	fio "github.com/matzehuels/fetchtree/pkg/io"
	"github.com/matzehuels/fetchtree/pkg/project"
	"github.com/matzehuels/fetchtree/pkg/sink"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:8080"

// Config wires a [Server].
type Config struct {
	Addr      string
	Handler   *fio.Handler
	Workspace *project.Workspace

	// Cache holds encoded exports keyed by document checksum. Nil disables
	// caching.
	Cache cache.Cache
	Keyer cache.Keyer

	// ExportDir is the only directory POST /project/export may write files
	// into; destinations are paths relative to it. Empty means clients can
	// only export to s3:// (when the handler's resolver has S3 configured).
	ExportDir string

	Logger *log.Logger
}

// Server exposes a workspace over HTTP.
type Server struct {
	handler  *fio.Handler
	exporter *fio.Handler // handler with a confined resolver
	ws       *project.Workspace
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger

	httpServer *http.Server
}

// New creates a server. Missing dependencies get defaults: a fresh
// workspace, a silent handler and no cache.
func New(cfg Config) *Server {
	s := &Server{
		handler: cfg.Handler,
		ws:      cfg.Workspace,
		cache:   cfg.Cache,
		keyer:   cfg.Keyer,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.handler == nil {
		s.handler = fio.New(s.logger, nil)
	}
	if s.ws == nil {
		s.ws = project.NewWorkspace()
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}

	confined := sink.Resolver{Confine: true, Root: cfg.ExportDir}
	if s.handler.Resolver != nil {
		confined.S3 = s.handler.Resolver.S3
	}
	s.exporter = &fio.Handler{Logger: s.handler.Logger, Resolver: &confined, MaxSize: s.handler.MaxSize}

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Workspace returns the workspace the server imports into.
func (s *Server) Workspace() *project.Workspace {
	return s.ws
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/import", s.handleImport)
	r.Route("/project", func(r chi.Router) {
		r.Get("/", s.handleProject)
		r.Delete("/", s.handleClear)
		r.Get("/outline", s.handleOutline)
		r.Get("/export", s.handleEncode)
		r.Post("/export", s.handleExport)
	})
	return r
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
