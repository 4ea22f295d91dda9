package io

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/observability"
	"github.com/matzehuels/fetchtree/pkg/project"
)

// Result keys set by [Handler.ExportProject].
const (
	KeySuccess      = "success"
	KeyError        = "error"
	KeyCode         = "code"
	KeyBytesWritten = "bytesWritten"
	KeyFormat       = "format"
	KeyDestination  = "destination"
)

// Result describes the outcome of an export. It always carries
// KeySuccess and KeyDestination; failures add KeyError and KeyCode,
// successes add KeyBytesWritten and KeyFormat.
type Result map[string]any

// OK reports whether the export succeeded.
func (r Result) OK() bool {
	ok, _ := r[KeySuccess].(bool)
	return ok
}

// Err returns the failure message, or "".
func (r Result) Err() string {
	s, _ := r[KeyError].(string)
	return s
}

// Code returns the failure code, or "".
func (r Result) Code() errors.Code {
	s, _ := r[KeyCode].(string)
	return errors.Code(s)
}

// BytesWritten returns the number of bytes written on success.
func (r Result) BytesWritten() int {
	n, _ := r[KeyBytesWritten].(int)
	return n
}

// Format returns the format the document was written in.
func (r Result) Format() document.Format {
	s, _ := r[KeyFormat].(string)
	return document.Format(s)
}

func failure(res Result, err error, fallback errors.Code) Result {
	res[KeySuccess] = false
	res[KeyCode] = string(errors.CodeOr(err, fallback))
	res[KeyError] = errors.UserMessage(err)
	return res
}

// ExportProject serializes p and writes it to destination. See
// [Handler.ExportProjectAs] for the format rules.
func (h *Handler) ExportProject(ctx context.Context, p *project.Project, destination string) Result {
	return h.ExportProjectAs(ctx, p, destination, "")
}

// ExportProjectAs is [Handler.ExportProject] with an explicit format. An
// empty format is taken from the destination's extension, then the
// project, then JSON. The project is only read.
func (h *Handler) ExportProjectAs(ctx context.Context, p *project.Project, destination string, format document.Format) (res Result) {
	res = Result{KeySuccess: false, KeyDestination: destination}
	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "export panicked: %v", r)
			res = failure(res, err, errors.ErrCodeInternal)
		}
		observability.Project().OnExportComplete(ctx, destination, string(res.Format()), res.BytesWritten(), time.Since(start), err)
		if err != nil {
			h.logger().Error("export failed", "destination", destination, "code", res.Code(), "err", res.Err())
		} else {
			h.logger().Info("exported project", "destination", destination, "format", res.Format(), "bytes", res.BytesWritten())
		}
	}()

	if p == nil {
		err = errors.New(errors.ErrCodeNoActiveProject, "no project to export")
		return failure(res, err, errors.ErrCodeNoActiveProject)
	}
	if format == "" {
		format = exportFormat(destination, p.Format)
	}
	res[KeyFormat] = string(format)
	observability.Project().OnExportStart(ctx, destination, string(format))

	s, err := h.resolver().Resolve(destination)
	if err != nil {
		return failure(res, err, errors.ErrCodeDestinationUnwritable)
	}
	data, err := document.Serialize(p.Root, format)
	if err != nil {
		return failure(res, err, errors.ErrCodeInternal)
	}
	n, err := s.Write(ctx, data)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeDestinationUnwritable, err, "write %s", s)
		return failure(res, err, errors.ErrCodeDestinationUnwritable)
	}

	res[KeySuccess] = true
	res[KeyBytesWritten] = n
	res[KeyDestination] = s.String()
	return res
}

// Encode serializes p in format without writing it anywhere. An empty
// format means the project's own format.
func (h *Handler) Encode(p *project.Project, format document.Format) ([]byte, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeNoActiveProject, "no project to export")
	}
	if format == "" {
		format = exportFormat("", p.Format)
	}
	return document.Serialize(p.Root, format)
}

func exportFormat(destination string, projectFormat document.Format) document.Format {
	if f, ok := document.FormatFromPath(destination); ok {
		return f
	}
	if projectFormat != "" {
		return projectFormat
	}
	return document.FormatJSON
}

// String renders a one-line summary, e.g. for CLI output.
func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("wrote %d bytes of %s to %v", r.BytesWritten(), r.Format(), r[KeyDestination])
	}
	return fmt.Sprintf("export to %v failed: %s: %s", r[KeyDestination], r.Code(), r.Err())
}
