package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/node"
	"github.com/matzehuels/fetchtree/pkg/render"
)

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		plain       bool
		changesOnly bool
	)

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two documents or projects",
		Long: `Compare two trees path by path.

Each argument is a document file, a stored project (id, id prefix or
name) or "." for the active project.`,
		Example: `  fetchtree diff old.json new.json
  fetchtree diff . staging.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.loadTree(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := s.loadTree(cmd, args[1])
			if err != nil {
				return err
			}

			r := render.Diff(a, b)
			if !r.Changed() {
				printSuccess("No differences")
				return nil
			}
			if changesOnly {
				var lines []render.DiffLine
				for _, l := range r.Lines {
					if l.Op != render.DiffEqual {
						lines = append(lines, l)
					}
				}
				r.Lines = lines
			}
			if plain {
				fmt.Fprint(cmd.OutOrStdout(), r.String())
			} else {
				fmt.Fprint(cmd.OutOrStdout(), r.Styled())
			}
			printDetail("%s added, %s removed", plural(r.Added, "line"), plural(r.Removed, "line"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	cmd.Flags().BoolVarP(&changesOnly, "changes", "c", false, "print only changed lines")
	return cmd
}

// loadTree resolves a diff operand: "." is the active project, an existing
// file is parsed, anything else is looked up in the store.
func (s *session) loadTree(cmd *cobra.Command, ref string) (*node.Node, error) {
	if ref == "." {
		p, err := s.active()
		if err != nil {
			return nil, err
		}
		return p.Root, nil
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		p, err := s.handler.LoadPath(ref)
		if err != nil {
			return nil, err
		}
		return p.Root, nil
	}
	p, err := s.resolveProject(cmd, ref)
	if err != nil {
		return nil, err
	}
	return p.Root, nil
}
