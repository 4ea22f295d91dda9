package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/project"
	"github.com/matzehuels/fetchtree/pkg/render"
	"github.com/matzehuels/fetchtree/pkg/store"
)

// resolveProject returns the stored project named by ref, or the active
// project when ref is empty.
func (s *session) resolveProject(cmd *cobra.Command, ref string) (*project.Project, error) {
	if ref == "" {
		return s.active()
	}
	return store.Find(cmd.Context(), s.store, ref)
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		depth  int
		values bool
		width  int
		plain  bool
		info   bool
	)

	cmd := &cobra.Command{
		Use:   "show [project]",
		Short: "Print the active project as an outline",
		Long: `Print a project's tree as an indented outline.

Leaves print as "title = value", keyed collections as "title {n}" and
positional collections as "title [n]". Without an argument the active
project is shown; otherwise a stored project by id, id prefix or name.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			p, err := s.resolveProject(cmd, ref)
			if err != nil {
				return err
			}

			if info {
				printKeyValue("Project", p.Name)
				printKeyValue("ID", p.ID)
				printKeyValue("Format", string(p.Format))
				if p.Location != "" {
					printKeyValue("Source", p.Location)
				}
				printKeyValue("Updated", formatRelativeTime(p.UpdatedAt))
				printStats(p.Stats(), "")
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Outline(p.Root, render.OutlineOptions{
				MaxDepth:      depth,
				HideValues:    !values,
				MaxValueWidth: width,
				Styled:        !plain,
			}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum depth to print (0 = unlimited)")
	cmd.Flags().BoolVar(&values, "values", true, "print leaf values")
	cmd.Flags().IntVar(&width, "width", 80, "truncate values longer than this (0 = never)")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	cmd.Flags().BoolVarP(&info, "info", "i", false, "print project details before the outline")
	return cmd
}

// browseCommand creates the interactive tree browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "browse [project]",
		Short:             "Explore the active project interactively",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			p, err := s.resolveProject(cmd, ref)
			if err != nil {
				return err
			}

			m := NewBrowseModel(p.Name, p.Root)
			prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(cmd.OutOrStdout()))
			_, err = prog.Run()
			return err
		},
	}
}
