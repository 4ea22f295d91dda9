// Package server exposes a project workspace over HTTP.
//
// Routes:
//
//	GET    /healthz               liveness and whether a project is loaded
//	POST   /import                body is a document; ?format= and ?name= optional
//	GET    /project               active project as JSON (404 when none)
//	DELETE /project               clear the workspace
//	GET    /project/outline       plain-text outline
//	GET    /project/export        active project encoded in ?format=
//	POST   /project/export        {"destination": "..."} written server-side
//
// Import responds {"success": bool}. Encoded exports are cached by the
// source checksum; the X-Cache response header reports hit or miss.
// POST /project/export destinations are paths relative to
// [Config.ExportDir] or s3:// URLs; absolute paths, file:// URLs and
// anything resolving outside the directory are rejected.
package server
