package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/store"
)

// projectsCommand creates the project management command.
func (c *CLI) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List, switch and delete saved projects",
	}

	cmd.AddCommand(c.projectsListCommand())
	cmd.AddCommand(c.projectsOpenCommand())
	cmd.AddCommand(c.projectsDeleteCommand())

	return cmd
}

func (c *CLI) projectsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			all, err := s.store.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}
			if len(all) == 0 {
				printInfo("No saved projects")
				printNextStep("Import one", appName+" import <file>")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), projectTable(all))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")
	return cmd
}

func projectTable(all []store.Summary) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(all))
	for _, sum := range all {
		marker := " "
		if sum.Current {
			marker = "▸"
		}
		id := sum.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			marker,
			id,
			sum.Name,
			string(sum.Format),
			strconv.Itoa(sum.Nodes),
			formatRelativeTime(sum.UpdatedAt),
			truncateMiddle(sum.Location, 40),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Format", "Nodes", "Updated", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && row < len(all) && all[row].Current {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 5 || col == 6 {
				return base.Foreground(colorDim)
			}
			return base
		})
	return t.Render()
}

func (c *CLI) projectsOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "open <project>",
		Short:             "Make a saved project the active one",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := store.Find(cmd.Context(), s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.SetCurrent(cmd.Context(), p.ID); err != nil {
				return err
			}
			printSuccess("Opened %s", StyleHighlight.Render(p.Name))
			printStats(p.Stats(), "")
			return nil
		},
	}
}

func (c *CLI) projectsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <project>",
		Aliases:           []string{"rm"},
		Short:             "Delete a saved project",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := store.Find(cmd.Context(), s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			printSuccess("Deleted %s", StyleHighlight.Render(p.Name))
			if active := s.ws.Active(); active != nil && active.ID == p.ID {
				printWarning("That was the active project; no project is active now")
			}
			return nil
		},
	}
}
