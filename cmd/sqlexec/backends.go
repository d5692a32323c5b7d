package main

import (
	"fmt"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newBackendsCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List supported backends and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"backend", "registered", "streaming", "multi-result via cursor", "cursor needs tx", "casing", "prefix"})

			for _, b := range types.Backends() {
				caps, err := capability.Resolve(b)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{
					b.String(),
					yesNo(adapter.IsRegistered(b)),
					yesNo(caps.SupportsStreaming),
					yesNo(caps.MultiResultRequiresCursor),
					yesNo(caps.CursorRequiresTransaction),
					caps.IdentifierCasing.String(),
					string(caps.ParameterPrefix),
				})
			}

			t.Render()
			_, _ = fmt.Fprintf(out, "(%d backends)\n", len(types.Backends()))

			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
