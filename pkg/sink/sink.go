// Package sink writes exported documents to their destinations.
//
// A destination string resolves to a [Sink]:
//
//	out.json                 FileSink
//	file:///tmp/out.yaml     FileSink
//	-                        WriterSink on stdout
//	s3://bucket/key.toml     S3Sink (needs an S3Config)
//
// A confining resolver (see [Resolver.Confine]) only accepts relative paths
// below its root, plus s3:// when configured.
//
// File writes go through a temporary file in the same directory and are
// renamed into place, so a failed export never leaves a partial document.
package sink

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/fetchtree/pkg/errors"
)

// Sink is a writable export destination.
type Sink interface {
	// Write stores data as the complete content of the destination and
	// returns the number of bytes written.
	Write(ctx context.Context, data []byte) (int, error)

	// String names the destination for logs and results.
	String() string
}

// Resolver maps destination strings to sinks.
type Resolver struct {
	// Stdout receives "-" destinations. Nil means os.Stdout.
	Stdout io.Writer

	// S3 enables s3:// destinations when non-nil.
	S3 *S3Config

	// Confine limits file destinations to relative paths that stay inside
	// Root, and refuses "-" and file:// URLs. With an empty Root no file
	// destination is accepted. Set it when callers are remote.
	Confine bool
	Root    string
}

// Resolve returns the sink for dest. Unknown schemes and s3:// without a
// configuration are reported as [errors.ErrCodeDestinationUnwritable].
func (r *Resolver) Resolve(dest string) (Sink, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "destination cannot be empty")
	}
	if r.Confine && !strings.Contains(dest, "://") {
		return r.confined(dest)
	}
	if dest == "-" {
		w := r.Stdout
		if w == nil {
			w = os.Stdout
		}
		return &WriterSink{W: w, Name: "stdout"}, nil
	}
	if !strings.Contains(dest, "://") {
		return &FileSink{Path: dest}, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse destination %q", dest)
	}
	switch u.Scheme {
	case "file":
		if r.Confine {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file URLs are not accepted here; use a path relative to the export directory")
		}
		if u.Host != "" && u.Host != "localhost" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file destination %q names host %q; use file:///absolute/path", dest, u.Host)
		}
		if u.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file destination %q has no path", dest)
		}
		return &FileSink{Path: u.Path}, nil
	case "s3":
		if r.S3 == nil {
			return nil, errors.New(errors.ErrCodeDestinationUnwritable, "s3 destinations need an s3 endpoint in the config")
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "s3 destination must look like s3://bucket/key, got %q", dest)
		}
		return NewS3Sink(*r.S3, u.Host, key)
	}
	return nil, errors.New(errors.ErrCodeDestinationUnwritable, "unsupported destination scheme %q", u.Scheme)
}

// confined resolves a plain path against Root. The path must be local
// (relative, no ".." escape) and its directory must still lie inside Root
// once symlinks are followed.
func (r *Resolver) confined(dest string) (Sink, error) {
	if r.Root == "" {
		return nil, errors.New(errors.ErrCodeDestinationUnwritable, "file exports are disabled; configure an export directory")
	}
	if dest == "-" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "stdout is not an export destination here")
	}
	if !filepath.IsLocal(dest) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "destination %q must be a relative path inside the export directory", dest)
	}
	root, err := filepath.EvalSymlinks(r.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDestinationUnwritable, err, "export directory")
	}
	path := filepath.Join(root, dest)
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDestinationUnwritable, err, "destination directory")
	}
	if rel, err := filepath.Rel(root, dir); err != nil || (rel != "." && !filepath.IsLocal(rel)) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "destination %q leaves the export directory", dest)
	}
	return &FileSink{Path: filepath.Join(dir, filepath.Base(path))}, nil
}

// WriterSink writes to an io.Writer, such as stdout or an HTTP response.
type WriterSink struct {
	W    io.Writer
	Name string
}

func (s *WriterSink) Write(_ context.Context, data []byte) (int, error) {
	n, err := s.W.Write(data)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", s, err)
	}
	return n, nil
}

func (s *WriterSink) String() string {
	if s.Name == "" {
		return "writer"
	}
	return s.Name
}
