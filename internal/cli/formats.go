package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jomardyan/ToolBox/internal/core"
)

func newFormatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported formats and their aliases",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := core.Formats()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(formats)
			}

			// Rendered with the plain-text table codec.
			t := core.NewTable([]string{"name", "aliases", "extension", "content type"})
			for _, f := range formats {
				t.AddRecord([]string{string(f.Name), strings.Join(f.Aliases, ", "), f.Extension, f.ContentType})
			}
			out, err := core.Serialize(t, core.FormatTXT, core.Options{})
			if err != nil {
				return err
			}
			return writeOutput("", out, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}
