package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fetchtree/pkg/render"
)

// RenderSVG lays out a DOT graph with the embedded Graphviz and returns SVG
// sized to its viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("graphviz: %w", err)
	}
	defer gv.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("graphviz render: %w", err)
	}
	return normalizeViewBox(out.Bytes()), nil
}

// RenderPDF renders dot to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, render.PDF, 1)
}

// RenderPNG is like [RenderPDF] for PNG. A scale of 2 doubles the resolution.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, render.PNG, scale)
}

var svgOpenTag = regexp.MustCompile(`<svg\b[^>]*\bviewBox="[\d.]+\s+[\d.]+\s+([\d.]+)\s+([\d.]+)"[^>]*>`)

// normalizeViewBox replaces Graphviz's point-based <svg> size with a
// unitless one taken from the viewBox, so browsers scale the drawing.
func normalizeViewBox(svg []byte) []byte {
	m := svgOpenTag.FindSubmatchIndex(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(svg[m[2]:m[3]]), 64)
	h, _ := strconv.ParseFloat(string(svg[m[4]:m[5]]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}

	dim := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	tag := `<svg xmlns="http://www.w3.org/2000/svg" width="` + dim(w) + `" height="` + dim(h) +
		`" viewBox="0 0 ` + dim(w) + " " + dim(h) + `">`

	out := make([]byte, 0, len(svg))
	out = append(out, svg[:m[0]]...)
	out = append(out, tag...)
	return append(out, svg[m[1]:]...)
}
