package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/project"
	"github.com/matzehuels/fetchtree/pkg/render"
	"github.com/matzehuels/fetchtree/pkg/render/nodelink"
	"github.com/matzehuels/fetchtree/pkg/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	maxNodes   int     // collapse the diagram after this many boxes
	hideValues bool    // leaf boxes show titles only
	scale      float64 // PNG scale factor
	noCache    bool    // skip the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{maxNodes: nodelink.DefaultMaxNodes, scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render <output>",
		Short: "Draw the active project as a node-link diagram",
		Long: `Draw the active project as a Graphviz node-link diagram.

The output format follows the file extension: .dot (Graphviz source),
.svg, .pdf or .png. PDF and PNG need rsvg-convert from librsvg.`,
		Example: `  fetchtree render tree.svg
  fetchtree render tree.png --scale 3 --max-nodes 200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := args[0]

			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.active()
			if err != nil {
				return err
			}

			cch := cache.NewNullCache()
			if !opts.noCache {
				if cch, err = cache.Open(ctx, s.cfg.CacheOptions()); err != nil {
					c.Logger.Warn("cache unavailable, rendering without it", "err", err)
					cch = cache.NewNullCache()
				}
			}
			defer cch.Close()

			data, err := c.renderProject(ctx, cch, p, strings.ToLower(filepath.Ext(out)), opts)
			if err != nil {
				return err
			}
			n, err := (&sink.FileSink{Path: out}).Write(ctx, data)
			if err != nil {
				return err
			}
			printSuccess("Rendered %s", StyleHighlight.Render(p.Name))
			printFile(out)
			printDetail("%d bytes", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "maximum boxes to draw")
	cmd.Flags().BoolVar(&opts.hideValues, "no-values", false, "show only titles on leaf boxes")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always re-render")
	return cmd
}

// renderProject produces the diagram for ext. SVG is cached by the
// project's checksum and the diagram options; PDF and PNG are converted from
// that SVG.
func (c *CLI) renderProject(ctx context.Context, cch cache.Cache, p *project.Project, ext string, opts renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(p.Root, nodelink.Options{HideValues: opts.hideValues, MaxNodes: opts.maxNodes})

	switch ext {
	case ".dot", ".gv":
		return []byte(dot), nil
	case ".svg":
		return c.cachedSVG(ctx, cch, p, dot, opts)
	case ".pdf", ".png":
		svg, err := c.cachedSVG(ctx, cch, p, dot, opts)
		if err != nil {
			return nil, err
		}
		return render.Convert(ctx, svg, render.RasterFormat(ext[1:]), opts.scale)
	}
	return nil, fmt.Errorf("unsupported output %q (want .dot, .svg, .pdf or .png)", ext)
}

func (c *CLI) cachedSVG(ctx context.Context, cch cache.Cache, p *project.Project, dot string, opts renderOpts) ([]byte, error) {
	if p.Checksum == "" {
		return nodelink.RenderSVG(ctx, dot)
	}
	key := cache.NewDefaultKeyer().RenderKey(p.Checksum, fmt.Sprintf("svg:%d:%t", opts.maxNodes, opts.hideValues))
	if data, ok, err := cch.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("render cache hit", "project", p.Name)
		return data, nil
	}
	data, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := cch.Set(ctx, key, data, 0); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return data, nil
}
