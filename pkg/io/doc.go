// Package io converts between persisted documents and projects.
//
// # Overview
//
// A [Handler] is the only way documents enter or leave a project:
//
//   - [Handler.ImportFromPath] and [Handler.ImportFromData] parse a document
//     and install it as the active project of a [project.Workspace]
//   - [Handler.ExportProject] serializes a project's tree and writes it to a
//     destination, reporting the outcome as a [Result]
//
// The error-returning variants [Handler.LoadPath], [Handler.LoadData] and
// [Handler.LoadReader] build a project without touching any workspace; the
// CLI and HTTP server use them to report failure causes.
//
// # Import
//
// Import reads the whole input, picks a format (explicit hint, else content
// sniffing, for paths and bytes alike), builds the node tree and validates it.
// Only a complete, valid project is ever installed. On failure the import
// functions return false, log the coded error and leave the workspace as it
// was:
//
//	ws := project.NewWorkspace()
//	h := io.New(logger, nil)
//	if !h.ImportFromPath(ws, "users.json") {
//	    // ws still holds the previous project, if any
//	}
//
// Failure codes follow the four-way taxonomy of [errors]: NOT_FOUND for
// paths that cannot be opened or read, MALFORMED_DOCUMENT for bytes that do
// not parse.
//
// # Export
//
// Export never panics and never returns an error value; callers inspect the
// result:
//
//	res := h.ExportProject(ctx, ws.Active(), "out.yaml")
//	if !res.OK() {
//	    fmt.Println(res.Code(), res.Err())
//	}
//
// The format comes from the destination's extension, then the project's own
// format, then JSON. Trees that break the node invariants are reported as
// INVARIANT_VIOLATION before anything is written; write failures as
// DESTINATION_UNWRITABLE. Export does not modify the project.
package io
