package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fetchtree/pkg/errors"
	fio "github.com/matzehuels/fetchtree/pkg/io"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <destination>",
		Short: "Write the active project to a file, stdout or object storage",
		Long: `Serialize the active project and write it to a destination.

Destinations are file paths, file:// URLs, s3://bucket/key (when an S3
endpoint is configured) or "-" for stdout. The format is taken from
--format, then the destination's extension, then the format the project
was imported from.`,
		Example: `  fetchtree export out.yaml
  fetchtree export - --format toml
  fetchtree export s3://exports/config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			dest := args[0]
			res := s.handler.ExportProjectAs(cmd.Context(), s.ws.Active(), dest, f)
			if !res.OK() {
				err := errors.New(res.Code(), "%s", res.Err())
				if res.Code() == errors.ErrCodeNoActiveProject {
					err.Message += fmt.Sprintf("; run '%s import <file>' first", appName)
				}
				return err
			}
			if dest != "-" {
				printSuccess("Exported %s as %s", StyleHighlight.Render(s.ws.Active().Name), res.Format())
				printFile(fmt.Sprint(res[fio.KeyDestination]))
				printDetail("%d bytes", res.BytesWritten())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml or toml")
	return cmd
}
