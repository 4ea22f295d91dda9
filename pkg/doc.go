// Package pkg provides the core libraries for fetchtree.
//
// # Overview
//
// fetchtree turns structured documents (JSON, YAML, TOML) into a uniform
// node tree, keeps the tree as the active project of a workspace, and writes
// it back out in any supported format. The pkg directory is organized into
// four main areas:
//
//  1. Domain - [node] trees, [document] codecs and [project] workspaces
//  2. Import/export - [io] orchestration with [sink] destinations
//  3. Infrastructure - [cache], [store], [httputil] and [observability]
//  4. Surfaces - [render] output and the [server] HTTP API
//
// # Architecture
//
// The typical data flow through fetchtree:
//
//	file / URL / stdin / request body
//	         ↓
//	    [document] package (detect format, decode to a value)
//	         ↓
//	    [document.Build] (value → node tree)
//	         ↓
//	    [project] package (active project in the workspace)
//	         ↓
//	    [io] package (encode, write to a [sink])
//	         ↓
//	    file / stdout / s3://
//
// # Quick Start
//
// Import a file and export it as YAML:
//
//	ws := project.NewWorkspace()
//	h := io.New(nil, nil)
//	if !h.ImportFromPath(ws, "config.json") {
//	    // the previous project (if any) is still active
//	}
//	res := h.ExportProjectAs(ctx, ws.Active(), "config.yaml", "")
//	if !res.OK() {
//	    log.Fatal(res.Err())
//	}
//
// # Main Packages
//
// ## Domain
//
// [node] - The tree model. Leaves carry a textual value and its type;
// collections are keyed (objects) or positional (arrays, children titled
// "[i]"). Includes walking, validation and statistics.
//
// [document] - Decoders and encoders for JSON, YAML and TOML, format
// sniffing, and conversion between decoded values and node trees.
//
// [project] - Projects (a named tree plus its source) and the workspace that
// holds the active one.
//
// [errors] - Coded errors shared by every package.
//
// ## Import/Export
//
// [io] - The import/export handler. Imports either replace the active project
// or leave it untouched; exports return a result map with success, format,
// destination and byte count.
//
// [sink] - Export destinations: files, stdout and S3-compatible object
// storage.
//
// ## Infrastructure
//
// [cache] - Response, document and render caching with file, memory and Redis
// backends.
//
// [store] - Project persistence on disk or in MongoDB, including the current
// project pointer.
//
// [httputil] - Cached, retrying HTTP fetches for remote documents.
//
// [observability] - Hooks for import, export, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// ## Surfaces
//
// [render] - Terminal outlines, path-level diffs and SVG to PDF/PNG
// conversion.
//
// [render/nodelink] - Graphviz node-link diagrams of a tree.
//
// [server] - HTTP API over a workspace.
//
// [node]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/node
// [document]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/document
// [project]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/project
// [errors]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/io
// [sink]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/buildinfo
// [render]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/server
//
// [document.Build]: https://pkg.go.dev/github.com/matzehuels/fetchtree/pkg/document#Build
package pkg
