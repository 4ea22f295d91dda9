package project

import "sync"

// Workspace holds at most one active project.
//
// Replacement is atomic: readers see either the previous project or the new
// one, never a partially built tree. A Workspace is safe for concurrent use;
// the zero value is an empty workspace.
type Workspace struct {
	mu     sync.RWMutex
	active *Project
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Active returns the active project, or nil.
func (w *Workspace) Active() *Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

// HasProject reports whether a project is active.
func (w *Workspace) HasProject() bool {
	return w.Active() != nil
}

// Replace installs p as the active project and returns the one it replaced.
// Replacing with nil is the same as [Workspace.Clear].
func (w *Workspace) Replace(p *Project) *Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.active
	w.active = p
	return prev
}

// Clear empties the workspace and returns the project it held.
func (w *Workspace) Clear() *Project {
	return w.Replace(nil)
}
