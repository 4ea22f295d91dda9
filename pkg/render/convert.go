package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// rsvgTool is the librsvg command line converter.
const rsvgTool = "rsvg-convert"

const installHint = "install librsvg (brew install librsvg, or apt install librsvg2-bin)"

// RasterFormat names an output format rsvg-convert can produce from SVG.
type RasterFormat string

const (
	PDF RasterFormat = "pdf"
	PNG RasterFormat = "png"
)

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgTool)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return Convert(context.Background(), svg, PDF, 1)
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the resolution;
// values <= 0 mean 1.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return Convert(context.Background(), svg, PNG, scale)
}

// Convert pipes svg through rsvg-convert. The process is killed if ctx ends.
func Convert(ctx context.Context, svg []byte, format RasterFormat, scale float64) ([]byte, error) {
	if !Available() {
		return nil, fmt.Errorf("%s output needs %s: %s", format, rsvgTool, installHint)
	}
	args := []string{"-f", string(format)}
	if format == PNG {
		if scale <= 0 {
			scale = 1
		}
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, rsvgTool, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", rsvgTool, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", rsvgTool, err)
	}
	return stdout.Bytes(), nil
}
