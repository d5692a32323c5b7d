// Package main provides the sqlexec command-line tool: it runs SQL text or
// stored procedures against SQL Server, PostgreSQL or Oracle through the
// sqlexec engine and renders the result tables and output parameters.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
