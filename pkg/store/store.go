// Package store persists projects between runs.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON snapshot per project under
//     ~/.config/fetchtree/projects (CLI default)
//   - [MongoStore]: a MongoDB collection, for shared deployments of the
//     HTTP server
//
// Besides the snapshots each store keeps a "current" pointer. The CLI runs
// each command in a fresh process, so this pointer is how the active
// project of one command carries over to the next.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/project"
)

// Store persists project snapshots.
type Store interface {
	// Save inserts or replaces the project with p.ID.
	Save(ctx context.Context, p *project.Project) error

	// Load returns the project with id, or a PROJECT_NOT_FOUND error.
	Load(ctx context.Context, id string) (*project.Project, error)

	// List returns summaries of all projects, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a project. Deleting the current project clears the
	// current pointer.
	Delete(ctx context.Context, id string) error

	// SetCurrent marks id as the current project; "" clears it.
	SetCurrent(ctx context.Context, id string) error

	// Current returns the current project, or a NO_ACTIVE_PROJECT error.
	Current(ctx context.Context) (*project.Project, error)

	Close() error
}

// Summary describes a stored project without its tree.
type Summary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location,omitempty"`
	Format    document.Format `json:"format"`
	Nodes     int             `json:"nodes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Current   bool            `json:"current,omitempty"`
}

// Summarize builds the summary of p.
func Summarize(p *project.Project) Summary {
	return Summary{
		ID:        p.ID,
		Name:      p.Name,
		Location:  p.Location,
		Format:    p.Format,
		Nodes:     p.Stats().Nodes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func sortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}

// Find loads the project whose ID equals ref or starts with it, or whose
// name equals ref. An ambiguous reference is INVALID_INPUT.
func Find(ctx context.Context, s Store, ref string) (*project.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project reference cannot be empty")
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Summary
	for _, sum := range all {
		if sum.ID == ref {
			return s.Load(ctx, sum.ID)
		}
		if strings.HasPrefix(sum.ID, ref) || sum.Name == ref {
			matches = append(matches, sum)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no project matches %q", ref)
	case 1:
		return s.Load(ctx, matches[0].ID)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%q matches %d projects; use a longer id", ref, len(matches))
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeProjectNotFound, "project %s not found", id)
}

func noCurrent() error {
	return errors.New(errors.ErrCodeNoActiveProject, "no current project; import one first")
}
