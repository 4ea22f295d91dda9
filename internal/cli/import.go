package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/httputil"
	fio "github.com/matzehuels/fetchtree/pkg/io"
	"github.com/matzehuels/fetchtree/pkg/project"
)

// importOpts holds the flags shared by import and fetch.
type importOpts struct {
	format string
	name   string
}

func (o *importOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "document format: json, yaml or toml (default: detect)")
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "project name (default: derived from the source)")
}

func (o importOpts) options() ([]fio.Option, error) {
	var opts []fio.Option
	f, err := parseFormat(o.format)
	if err != nil {
		return nil, err
	}
	if f != "" {
		opts = append(opts, fio.WithFormat(f))
	}
	if o.name != "" {
		opts = append(opts, fio.WithName(o.name))
	}
	return opts, nil
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <path|->",
		Short: "Import a document file as the active project",
		Long: `Import a JSON, YAML or TOML document as the active project.

The format is taken from --format, else detected from the content; a file
and the same bytes piped on stdin always import alike. Use "-" to read
from stdin.`,
		Example: `  fetchtree import config.yaml
  curl -s https://api.example.com/items | fetchtree import - --name items`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			} else if !stdinIsPipe() {
				return fmt.Errorf("nothing to import: pass a path or pipe a document to stdin")
			}
			ioOpts, err := opts.options()
			if err != nil {
				return err
			}

			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var ok bool
			if src == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				ok = s.handler.ImportFromData(s.ws, data, append([]fio.Option{fio.WithLocation("stdin")}, ioOpts...)...)
			} else {
				if abs, err := filepath.Abs(src); err == nil {
					src = abs
				}
				ok = s.handler.ImportFromPath(s.ws, src, ioOpts...)
			}
			if !ok {
				return fmt.Errorf("import of %s failed (run with -v for details)", src)
			}
			if err := s.commit(cmd.Context()); err != nil {
				return err
			}
			printImported(s.ws.Active(), "")
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		opts    importOpts
		refresh bool
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a document over HTTP and import it",
		Long: `Download a document and import it as the active project.

Responses are cached (see 'fetchtree cache'); --refresh bypasses the
cached copy. Network errors and 5xx responses are retried.`,
		Example: `  fetchtree fetch https://api.github.com/repos/golang/go
  fetchtree fetch https://example.com/data -H "Authorization: Bearer $TOKEN" -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rawURL := args[0]

			ioOpts, err := opts.options()
			if err != nil {
				return err
			}

			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cch, err := cache.Open(ctx, s.cfg.CacheOptions())
			if err != nil {
				c.Logger.Warn("cache unavailable, fetching without it", "err", err)
				cch = cache.NewNullCache()
			}
			defer cch.Close()

			f := httputil.NewFetcher(cch, s.cfg.Cache.TTL.Duration, c.Logger)
			f.Client.Timeout = s.cfg.Fetch.Timeout.Duration
			f.Attempts = s.cfg.Fetch.Attempts
			for _, h := range headers {
				k, v, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q (want 'Name: value')", h)
				}
				f.Headers.Add(strings.TrimSpace(k), strings.TrimSpace(v))
			}
			if refresh {
				if err := f.Invalidate(ctx, rawURL); err != nil {
					return err
				}
			}

			prog := newProgress(c.Logger)
			spin := newSpinner(ctx, "Fetching "+rawURL)
			spin.Start()
			data, cached, err := f.Fetch(ctx, rawURL)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.step("fetched", "url", rawURL, "bytes", len(data), "cached", cached)

			ioOpts = append([]fio.Option{fio.WithLocation(rawURL)}, ioOpts...)
			if !s.handler.ImportFromData(s.ws, data, ioOpts...) {
				return fmt.Errorf("import of %s failed (run with -v for details)", rawURL)
			}
			prog.done("imported", "nodes", s.ws.Active().Stats().Nodes)
			if err := s.commit(ctx); err != nil {
				return err
			}

			status := iconFresh
			if cached {
				status = iconCached
			}
			printImported(s.ws.Active(), status)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore any cached response")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra request header, e.g. 'Accept: application/json'")
	return cmd
}

func printImported(p *project.Project, status string) {
	printSuccess("Imported %s", StyleHighlight.Render(p.Name))
	printKeyValue("ID", p.ShortID())
	printKeyValue("Format", string(p.Format))
	if p.Location != "" {
		if strings.Contains(p.Location, "://") {
			printKeyValue("Source", StyleLink.Render(p.Location))
		} else {
			printKeyValue("Source", p.Location)
		}
	}
	printStats(p.Stats(), status)
	printNextStep("Browse it", appName+" show")
}
