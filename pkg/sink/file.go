package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink replaces the file at Path. The parent directory must exist.
type FileSink struct {
	Path string
	Mode os.FileMode // 0 means 0644
}

func (s *FileSink) Write(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dir := filepath.Dir(s.Path)
	if info, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("stat %s: %w", dir, err)
	} else if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}
	if info, err := os.Stat(s.Path); err == nil && info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", s.Path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err := tmp.Write(data)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return 0, fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return 0, fmt.Errorf("rename to %s: %w", s.Path, err)
	}
	committed = true
	return n, nil
}

func (s *FileSink) String() string { return s.Path }
