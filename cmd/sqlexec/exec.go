package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExecCommand(a *app) *cobra.Command {
	var (
		opts   commandOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "exec <sql|procedure>",
		Short: "Run a command for its side effects",
		Long: `Run a command for its side effects and print the affected row count,
output parameters and return value.`,
		Example: `  sqlexec exec "UPDATE users SET active = 0 WHERE id = @id" -p in:@id:int32=7
  sqlexec exec --proc dbo.add_order -p in:@customer:int32=1 -p out:@order_id:int64 -p return:@rc:int32`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
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

			res, err := exec.ExecuteNonQuery(cmd.Context(), c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return renderJSON(out, res, true)
			}

			if res.RowsAffected < 0 {
				_, _ = fmt.Fprintln(out, "OK")
			} else {
				_, _ = fmt.Fprintf(out, "OK, %d rows affected\n", res.RowsAffected)
			}
			renderParameters(out, res)

			return nil
		},
	}

	addCommandFlags(cmd, &opts)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")

	return cmd
}
