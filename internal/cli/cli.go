// Package cli implements the fetchtree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/internal/config"
	"github.com/matzehuels/fetchtree/pkg/buildinfo"
	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/errors"
	fio "github.com/matzehuels/fetchtree/pkg/io"
	"github.com/matzehuels/fetchtree/pkg/observability"
	"github.com/matzehuels/fetchtree/pkg/project"
	"github.com/matzehuels/fetchtree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "fetchtree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "fetchtree turns JSON, YAML and TOML documents into browsable trees",
		Long:          `fetchtree imports structured documents from files or URLs into a node tree, lets you inspect, diff and render it, and exports it back to any supported format.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output = cmd.OutOrStdout()
			c.SetLogLevel(levelFor(verbose))
			if verbose {
				observability.SetAll(observability.LogHooks{Logger: c.Logger})
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/fetchtree/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Session
// =============================================================================

// loadConfig loads settings once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// session is the per-command view of the workspace. Each CLI invocation is
// a new process, so the active project is restored from the store's current
// pointer and written back by commit.
type session struct {
	cfg     *config.Config
	store   store.Store
	handler *fio.Handler
	ws      *project.Workspace
}

func (c *CLI) openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open project store: %w", err)
	}

	resolver := cfg.Resolver()
	resolver.Stdout = cmd.OutOrStdout()

	s := &session{
		cfg:     cfg,
		store:   st,
		handler: fio.New(c.Logger, resolver),
		ws:      project.NewWorkspace(),
	}
	p, err := st.Current(ctx)
	switch {
	case err == nil:
		s.ws.Replace(p)
	case errors.Is(err, errors.ErrCodeNoActiveProject):
	default:
		c.Logger.Warn("could not restore active project", "err", err)
	}
	return s, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// active returns the active project or a NO_ACTIVE_PROJECT error with a hint.
func (s *session) active() (*project.Project, error) {
	p := s.ws.Active()
	if p == nil {
		return nil, errors.New(errors.ErrCodeNoActiveProject, "no active project; run '%s import <file>' first", appName)
	}
	return p, nil
}

// commit saves the active project and makes it current.
func (s *session) commit(ctx context.Context) error {
	p := s.ws.Active()
	if p == nil {
		return nil
	}
	if err := s.store.Save(ctx, p); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return s.store.SetCurrent(ctx, p.ID)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormat parses an optional --format flag.
func parseFormat(s string) (document.Format, error) {
	if s == "" {
		return "", nil
	}
	return document.ParseFormat(s)
}

// stdinIsPipe reports whether stdin is redirected.
func stdinIsPipe() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice == 0
}
