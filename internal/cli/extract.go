package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jomardyan/ToolBox/internal/core"
)

// filterList collects repeated --filter flags.
//
// Each value is "column:operator:value" or "column:value" (equals). The
// value keeps any further colons, so "time:equals:10:30" matches "10:30".
type filterList []core.Filter

var _ pflag.Value = (*filterList)(nil)

func (l *filterList) String() string {
	parts := make([]string, len(*l))
	for i, f := range *l {
		parts[i] = fmt.Sprintf("%s:%s:%s", f.Column, f.Operator, f.Value)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (l *filterList) Set(s string) error {
	col, rest, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(col) == "" {
		return fmt.Errorf("filter %q: want column:operator:value", s)
	}

	f := core.Filter{Column: col, Value: rest}
	if opName, value, ok := strings.Cut(rest, ":"); ok {
		if op, err := core.ParseOperator(opName); err == nil {
			f.Operator = op
			f.Value = value
		}
	}
	if f.Operator == "" {
		f.Operator = core.OpEquals
	}

	*l = append(*l, f)
	return nil
}

func (l *filterList) Type() string { return "filter" }

func newExtractCmd(a *app) *cobra.Command {
	var (
		columns []string
		filters filterList
		out     string
	)

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Select and filter columns of a CSV document",
		Long: `extract keeps the named columns of a CSV document, in the order given,
and drops rows that fail any --filter. Filters are AND-ed.

Operators: equals (default), contains, startsWith, endsWith. Matching is
case-sensitive; operator names are not.`,
		Example: `  toolbox extract --columns name,email people.csv
  toolbox extract --columns name --filter country:equals:NO --filter email:endsWith:.no people.csv`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := core.ExtractColumns(data, columns, filters)
			if err != nil {
				return err
			}
			a.logger.Debug("extraction completed",
				"columns", len(columns),
				"filters", len(filters),
				"bytes_out", len(result),
			)

			if result != "" && !strings.HasSuffix(result, "\n") {
				result += "\n"
			}
			return writeOutput(out, result, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVarP(&columns, "columns", "c", nil, "columns to keep, comma separated")
	fl.VarP(&filters, "filter", "w", "row filter column:operator:value (repeatable)")
	fl.StringVarP(&out, "out", "o", "", "write output to a file instead of stdout")
	return cmd
}
