package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/fetchtree/pkg/buildinfo"
	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	fio "github.com/matzehuels/fetchtree/pkg/io"
	"github.com/matzehuels/fetchtree/pkg/project"
	"github.com/matzehuels/fetchtree/pkg/render"
)

// MaxBodySize limits request bodies.
const MaxBodySize = fio.DefaultMaxSize

const cacheHeader = "X-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": buildinfo.Get().Version,
		"project": s.ws.HasProject(),
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var opts []fio.Option
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if format != "" {
		opts = append(opts, fio.WithFormat(format))
	}
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		opts = append(opts, fio.WithName(name))
	}

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	if !s.handler.ImportFromData(s.ws, data, opts...) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"success": false})
		return
	}
	p := s.ws.Active()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      p.ID,
		"name":    p.Name,
		"format":  p.Format,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.active(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	prev := s.ws.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": prev != nil})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	p, ok := s.active(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.Outline(p.Root, render.OutlineOptions{})))
}

// handleEncode returns the active project encoded in the requested format.
// Encodings are cached by source checksum.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	p, ok := s.active(w)
	if !ok {
		return
	}
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if format == "" {
		format = p.Format
	}

	ctx := r.Context()
	key := s.keyer.DocumentKey(p.Checksum, string(format))
	if p.Checksum != "" {
		if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			writeDocument(w, format, data, "hit")
			return
		}
	}

	data, err := s.handler.Encode(p, format)
	if err != nil {
		writeError(w, err)
		return
	}
	if p.Checksum != "" {
		if err := s.cache.Set(ctx, key, data, 0); err != nil {
			s.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	writeDocument(w, format, data, "miss")
}

type exportRequest struct {
	Destination string `json:"destination"`
	Format      string `json:"format,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid json body"))
		return
	}
	var format document.Format
	if req.Format != "" {
		if format, err = document.ParseFormat(req.Format); err != nil {
			writeError(w, err)
			return
		}
	}

	res := s.exporter.ExportProjectAs(r.Context(), s.ws.Active(), req.Destination, format)
	status := http.StatusOK
	if !res.OK() {
		status = statusFor(res.Code())
	}
	writeJSON(w, status, res)
}

func (s *Server) active(w http.ResponseWriter) (*project.Project, bool) {
	p := s.ws.Active()
	if p == nil {
		writeError(w, errors.New(errors.ErrCodeNoActiveProject, "no active project"))
		return nil, false
	}
	return p, true
}

// requestFormat reads ?format=, falling back to a document Content-Type.
func requestFormat(r *http.Request) (document.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return document.ParseFormat(f)
	}
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	for _, f := range document.Formats {
		if strings.EqualFold(strings.TrimSpace(ct), f.ContentType()) {
			return f, nil
		}
	}
	return "", nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNoActiveProject, errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedDocument, errors.ErrCodeInvariantViolation,
		errors.ErrCodeDestinationUnwritable, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeDocument(w http.ResponseWriter, f document.Format, data []byte, cacheStatus string) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set(cacheHeader, cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOr(err, errors.ErrCodeInternal)
	writeJSON(w, statusFor(code), map[string]any{
		"error": errors.UserMessage(err),
		"code":  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
