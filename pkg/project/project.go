// Package project holds imported documents and the workspace slot that
// tracks which one is active.
//
// A [Project] owns exactly one root [node.Node] plus the metadata needed to
// find it again (name, source location, format). A [Workspace] is the
// caller-owned replacement for a process-wide "current project": importers
// swap a fully built project into it, and nothing else mutates it.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/node"
)

// DefaultName is used when a project has neither a name nor a location.
const DefaultName = "untitled"

// Project is an imported document.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location,omitempty"`
	Format    document.Format `json:"format"`
	Root      *node.Node      `json:"root"`
	Checksum  string          `json:"checksum,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New creates a project with a fresh ID. An empty name is derived from the
// location's base name.
func New(name, location string, format document.Format, root *node.Node) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		Name:      nameFor(name, location),
		Location:  location,
		Format:    format,
		Root:      root,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func nameFor(name, location string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if location == "" || location == "-" {
		return DefaultName
	}
	base := filepath.Base(location)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return DefaultName
	}
	return base
}

// Checksum returns the hex SHA-256 of a project's source bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stats summarizes the project's tree. A project without a root reports
// zero stats.
func (p *Project) Stats() node.Stats {
	if p == nil || p.Root == nil {
		return node.Stats{}
	}
	return node.Count(p.Root)
}

// Touch marks the project as modified now.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// ShortID returns the first eight characters of the ID, for display.
func (p *Project) ShortID() string {
	if len(p.ID) > 8 {
		return p.ID[:8]
	}
	return p.ID
}
