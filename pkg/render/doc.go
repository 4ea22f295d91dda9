// Package render turns node trees into human-readable output.
//
// # Overview
//
// Three views are provided:
//
//   - [Outline]: an indented outline with box-drawing guides, optionally
//     colored with lipgloss
//   - [Diff]: a line diff of two trees' path listings (see [Listing])
//   - Node-link diagrams via Graphviz (in [nodelink] subpackage)
//
// # Outline
//
//	fmt.Print(render.Outline(root, render.OutlineOptions{MaxDepth: 2, Styled: true}))
//
// Leaves print as "title = value", keyed collections as "title {n}" and
// positional collections as "title [n]".
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/fetchtree/pkg/render/nodelink
package render
