package main

import (
	"encoding/json"
	"fmt"

	"github.com/arloliu/sqlexec"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func addCommandFlags(cmd *cobra.Command, o *commandOptions) {
	cmd.Flags().StringArrayVarP(&o.params, "param", "p", nil, "parameter spec, repeatable (in:name[:type]=value, out:name:type[:size], inout:name:type=value, cursor:name, return:name:type)")
	cmd.Flags().BoolVar(&o.procedure, "proc", false, "treat the text as a stored procedure name")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "per-command timeout (0 uses the configured command timeout)")
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table or json)", format)
	}
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		opts   commandOptions
		multi  bool
		stream bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "query <sql|procedure>",
		Short: "Run a command and print its result sets",
		Long: `Run a command and print its result sets.

By default the first result set is printed. --multi prints every result
set including drained ref cursors. --stream prints rows as they are read
on backends that support streaming.`,
		Example: `  sqlexec query "SELECT id, name FROM users WHERE id = @id" -p in:@id:int32=7
  sqlexec query --proc --multi pkg_report.daily -p cursor:p_rows -p in:p_day:date=2024-01-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if multi && stream {
				return fmt.Errorf("--multi and --stream are mutually exclusive")
			}

			c, err := opts.build(args[0])
			if err != nil {
				return err
			}

			exec, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.finish(exec)

			if stream {
				return streamRows(cmd, exec, c, format)
			}

			var res *types.Result
			if multi {
				res, err = exec.QueryMulti(cmd.Context(), c)
			} else {
				res, err = exec.Query(cmd.Context(), c)
			}
			if err != nil {
				return err
			}

			return renderResult(cmd, res, format)
		},
	}

	addCommandFlags(cmd, &opts)
	cmd.Flags().BoolVar(&multi, "multi", false, "print every result set")
	cmd.Flags().BoolVar(&stream, "stream", false, "print rows as they are read")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")

	return cmd
}

func renderResult(cmd *cobra.Command, res *types.Result, format string) error {
	out := cmd.OutOrStdout()
	if format == formatJSON {
		return renderJSON(out, res, false)
	}

	for i, tbl := range res.Tables {
		if len(res.Tables) > 1 {
			_, _ = fmt.Fprintf(out, "-- result %d\n", i+1)
		}
		renderTable(out, tbl)
	}
	if len(res.Tables) == 0 {
		_, _ = fmt.Fprintln(out, "(no result sets)")
	}
	renderParameters(out, res)

	return nil
}

// streamRows prints rows as the executor delivers them. The JSON format
// writes one object per row.
func streamRows(cmd *cobra.Command, exec *sqlexec.Executor, c *command.Command, format string) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	count := 0

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	res, err := exec.Stream(cmd.Context(), c, func(row types.Row) error {
		count++

		if format == formatJSON {
			obj := make(map[string]string, row.Len())
			for i, col := range row.Columns() {
				obj[col] = formatValue(row.At(i))
			}

			return enc.Encode(obj)
		}

		if count == 1 {
			header := make(table.Row, row.Len())
			for i, col := range row.Columns() {
				header[i] = col
			}
			t.AppendHeader(header)
		}
		values := make(table.Row, row.Len())
		for i, v := range row.Values() {
			values[i] = formatValue(v)
		}
		t.AppendRow(values)

		return nil
	})
	if err != nil {
		return err
	}

	if format == formatTable {
		if count > 0 {
			t.Render()
		}
		_, _ = fmt.Fprintf(out, "(%d rows, %s)\n", count, res.Strategy)
	}

	return nil
}
