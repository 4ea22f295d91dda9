package io

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/node"
	"github.com/matzehuels/fetchtree/pkg/observability"
	"github.com/matzehuels/fetchtree/pkg/project"
)

// ImportFromPath loads the document at path and makes it the active
// project of ws. It reports success; on failure the error is logged and ws
// is left unchanged.
func (h *Handler) ImportFromPath(ws *project.Workspace, path string, opts ...Option) bool {
	p, err := h.LoadPath(path, opts...)
	return h.install(ws, p, err, "path", path)
}

// ImportFromData is [Handler.ImportFromPath] for an in-memory document.
// Given a file's contents it produces the same tree as importing the file.
func (h *Handler) ImportFromData(ws *project.Workspace, data []byte, opts ...Option) bool {
	p, err := h.LoadData(data, "", opts...)
	return h.install(ws, p, err, "source", "data")
}

func (h *Handler) install(ws *project.Workspace, p *project.Project, err error, key, source string) bool {
	if err == nil && ws == nil {
		err = errors.New(errors.ErrCodeInvalidInput, "no workspace to import into")
	}
	if err != nil {
		h.logger().Error("import failed", key, source, "code", errors.CodeOr(err, errors.ErrCodeInternal), "err", errors.UserMessage(err))
		return false
	}
	prev := ws.Replace(p)
	fields := []any{key, source, "project", p.Name, "format", p.Format, "nodes", p.Stats().Nodes}
	if prev != nil {
		fields = append(fields, "replaced", prev.Name)
	}
	h.logger().Info("imported project", fields...)
	return true
}

// LoadPath reads and parses the document at path without touching any
// workspace. The format is taken from WithFormat, else sniffed from the
// content exactly as [Handler.LoadData] does; the extension is not
// consulted, so a file and its bytes always give the same tree.
func (h *Handler) LoadPath(path string, opts ...Option) (p *project.Project, err error) {
	ctx := context.Background()
	start := time.Now()
	observability.Project().OnImportStart(ctx, path)
	defer func() {
		observability.Project().OnImportComplete(ctx, path, formatOf(p), p.Stats().Nodes, time.Since(start), err)
	}()

	data, err := h.readFile(path)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	if o.location == "" {
		o.location = path
	}
	return h.build(data, o)
}

// LoadData parses an in-memory document. hint may be empty, in which case
// the content is sniffed.
func (h *Handler) LoadData(data []byte, hint document.Format, opts ...Option) (p *project.Project, err error) {
	ctx := context.Background()
	start := time.Now()
	o := applyOptions(opts)
	if hint != "" {
		o.format = hint
	}
	source := o.location
	if source == "" {
		source = "data"
	}
	observability.Project().OnImportStart(ctx, source)
	defer func() {
		observability.Project().OnImportComplete(ctx, source, formatOf(p), p.Stats().Nodes, time.Since(start), err)
	}()

	if int64(len(data)) > h.maxSize() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is larger than %d bytes", h.maxSize())
	}
	return h.build(data, o)
}

// LoadReader reads r to the end and parses it like [Handler.LoadData].
// It does not close r.
func (h *Handler) LoadReader(r io.Reader, hint document.Format, opts ...Option) (*project.Project, error) {
	data, err := h.readAll(r)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeNotFound, err, "read input")
		}
		return nil, err
	}
	return h.LoadData(data, hint, opts...)
}

func (h *Handler) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.New(errors.ErrCodeNotFound, "%s is a directory", path)
	}
	data, err := h.readAll(f)
	if err != nil && errors.GetCode(err) == "" {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return data, err
}

func (h *Handler) readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, h.maxSize()+1))
	if err != nil {
		return nil, err
	}
	if n > h.maxSize() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is larger than %d bytes", h.maxSize())
	}
	return buf.Bytes(), nil
}

func (h *Handler) build(data []byte, o options) (*project.Project, error) {
	if o.name != "" {
		if err := errors.ValidateProjectName(o.name); err != nil {
			return nil, err
		}
	}
	var (
		v   document.Value
		err error
	)
	format := o.format
	if format == "" {
		v, format, err = document.Sniff(data)
	} else {
		v, err = document.Decode(data, format)
	}
	if err != nil {
		return nil, err
	}

	root := document.Build(v)
	if err := node.Validate(root); err != nil {
		return nil, err
	}
	p := project.New(o.name, o.location, format, root)
	p.Checksum = project.Checksum(data)
	return p, nil
}

func formatOf(p *project.Project) string {
	if p == nil {
		return ""
	}
	return string(p.Format)
}
