package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jomardyan/ToolBox/internal/core"
)

type convertFlags struct {
	from     string
	to       string
	sqlTable string
	xmlRoot  string
	query    string
	out      string
}

func newConvertCmd(a *app) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert data from one format to another",
		Example: `  toolbox convert --from csv --to json people.csv
  cat people.json | toolbox convert --from json --to sql --sql-table people
  toolbox convert --from csv --to json --query '.[] | .name' people.csv`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, f, firstArg(args))
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.from, "from", "f", "", "source format (required)")
	fl.StringVarP(&f.to, "to", "t", "", "target format (required)")
	fl.StringVar(&f.sqlTable, "sql-table", "data", "table name for sql output")
	fl.StringVar(&f.xmlRoot, "xml-root", "root", "root element for xml output")
	fl.StringVar(&f.query, "query", "", "jq expression applied to json or jsonl output")
	fl.StringVarP(&f.out, "out", "o", "", "write output to a file instead of stdout")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, f convertFlags, path string) error {
	if f.from == "" || f.to == "" {
		return usageErrorf(errors.New("both --from and --to are required"))
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := core.ConvertWithOptions(data, f.from, f.to, core.Options{
		SQLTableName: f.sqlTable,
		XMLRootTag:   f.xmlRoot,
	})
	if err != nil {
		return err
	}
	a.logger.Debug("conversion completed",
		"from", f.from,
		"to", f.to,
		"bytes_in", len(data),
		"bytes_out", len(res.Output),
		"rows", res.Rows,
		"duration", time.Since(start),
	)

	for _, w := range res.Warnings {
		a.ui.Warning("%s", w)
	}

	output := res.Output
	if f.query != "" {
		output, err = applyQuery(f.query, output, res.Format)
		if err != nil {
			return usageErrorf(err)
		}
	}

	if err := writeOutput(f.out, output, cmd.OutOrStdout()); err != nil {
		return err
	}
	if f.out != "" && f.out != "-" {
		a.ui.Success("wrote %d rows to %s", res.Rows, f.out)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// maxArgs wraps cobra.MaximumNArgs so violations exit with ExitUsage.
func maxArgs(n int) cobra.PositionalArgs {
	check := cobra.MaximumNArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageErrorf(err)
		}
		return nil
	}
}
