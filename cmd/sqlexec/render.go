package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/arloliu/sqlexec/types"
	"github.com/jedib0t/go-pretty/v6/table"
)

func formatValue(v any) string {
	if types.IsNull(v) {
		return "NULL"
	}

	switch x := v.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func renderTable(w io.Writer, tbl *types.Table) {
	if tbl.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(tbl.Columns))
	for i, col := range tbl.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, values := range tbl.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", tbl.Len())
}

// renderParameters prints output parameters and the return value.
func renderParameters(w io.Writer, res *types.Result) {
	if len(res.Outputs) == 0 && res.ReturnValue == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"parameter", "value"})

	names := make([]string, 0, len(res.Outputs))
	for name := range res.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AppendRow(table.Row{name, formatValue(res.Outputs[name])})
	}
	if res.ReturnValue != nil {
		t.AppendRow(table.Row{"RETURN_VALUE", formatValue(res.ReturnValue)})
	}

	t.Render()
}

// jsonResult is the JSON form of a result.
type jsonResult struct {
	Strategy     string            `json:"strategy"`
	RowsAffected *int64            `json:"rows_affected,omitempty"`
	Tables       []jsonTable       `json:"tables,omitempty"`
	Outputs      map[string]string `json:"outputs,omitempty"`
	ReturnValue  *string           `json:"return_value,omitempty"`
}

type jsonTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func renderJSON(w io.Writer, res *types.Result, nonQuery bool) error {
	out := jsonResult{Strategy: res.Strategy.String()}
	if nonQuery {
		affected := res.RowsAffected
		out.RowsAffected = &affected
	}
	for _, tbl := range res.Tables {
		jt := jsonTable{Columns: tbl.Columns, Rows: make([][]string, 0, tbl.Len())}
		for _, values := range tbl.Rows {
			row := make([]string, len(values))
			for i, v := range values {
				row[i] = formatValue(v)
			}
			jt.Rows = append(jt.Rows, row)
		}
		out.Tables = append(out.Tables, jt)
	}
	if len(res.Outputs) > 0 {
		out.Outputs = make(map[string]string, len(res.Outputs))
		for k, v := range res.Outputs {
			out.Outputs[k] = formatValue(v)
		}
	}
	if res.ReturnValue != nil {
		rv := formatValue(res.ReturnValue)
		out.ReturnValue = &rv
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
