package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/server"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, exportDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over HTTP",
		Long: `Start an HTTP server around the workspace.

The active project is loaded at startup. A project imported through
POST /import becomes the active project when the server shuts down.

POST /project/export only writes files below --export-dir; without it
clients can export to s3:// destinations only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cch, err := cache.Open(ctx, s.cfg.CacheOptions())
			if err != nil {
				c.Logger.Warn("cache unavailable, serving without it", "err", err)
				cch = cache.NewNullCache()
			}
			defer cch.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			if exportDir == "" {
				exportDir = s.cfg.Server.ExportDir
			}
			initial := s.ws.Active()
			srv := server.New(server.Config{
				Addr:      addr,
				ExportDir: exportDir,
				Handler:   s.handler,
				Workspace: s.ws,
				Cache:     cch,
				Logger:    c.Logger,
			})

			printInfo("Listening on %s", StyleLink.Render("http://"+srv.Addr()))
			if initial != nil {
				printDetail("Active project: %s", initial.Name)
			}
			if err := srv.Run(ctx); err != nil {
				return err
			}

			if p := s.ws.Active(); p != nil && p != initial {
				if err := s.commit(context.WithoutCancel(ctx)); err != nil {
					return err
				}
				printSuccess("Saved %s as the active project", StyleHighlight.Render(p.Name))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory POST /project/export may write into (default from config)")
	return cmd
}
