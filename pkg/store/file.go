package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/project"
)

const currentFile = "current"

// FileStore keeps each project as <id>.json in a directory, plus a
// "current" file holding the current project's ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based project store.
// If baseDir is empty, defaults to ~/.config/fetchtree/projects/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = d
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns ~/.config/fetchtree/projects, honouring
// XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fetchtree", "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "fetchtree", "projects"), nil
}

func (s *FileStore) projectPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, p *project.Project) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil project")
	}
	if err := errors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.projectPath(p.ID), data)
}

func (s *FileStore) Load(ctx context.Context, id string) (*project.Project, error) {
	if err := errors.ValidateProjectID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(id)
}

func (s *FileStore) load(id string) (*project.Project, error) {
	data, err := os.ReadFile(s.projectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", id, err)
	}
	return &p, nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}
	current := s.currentID()

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		p, err := s.load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		sum := Summarize(p)
		sum.Current = p.ID == current
		out = append(out, sum)
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateProjectID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.projectPath(id)); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove project file: %w", err)
	}
	if s.currentID() == id {
		if err := os.Remove(filepath.Join(s.baseDir, currentFile)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear current project: %w", err)
		}
	}
	return nil
}

func (s *FileStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, currentFile)
	if id == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear current project: %w", err)
		}
		return nil
	}
	if err := errors.ValidateProjectID(id); err != nil {
		return err
	}
	if _, err := os.Stat(s.projectPath(id)); err != nil {
		return notFound(id)
	}
	return writeAtomic(path, []byte(id+"\n"))
}

func (s *FileStore) Current(ctx context.Context) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := s.currentID()
	if id == "" {
		return nil, noCurrent()
	}
	p, err := s.load(id)
	if errors.Is(err, errors.ErrCodeProjectNotFound) {
		return nil, noCurrent()
	}
	return p, err
}

// currentID reads the current pointer; callers hold mu.
func (s *FileStore) currentID() string {
	data, err := os.ReadFile(filepath.Join(s.baseDir, currentFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for project files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
