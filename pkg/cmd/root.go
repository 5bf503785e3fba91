// Package cmd provides CLI command implementations.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inspector",
		Short: "Agent buffer memory charts for the APM inspector",
		Long: `inspector polls the APM backend for an agent's direct and mapped
buffer statistics and renders them as interactive charts.

Commands:
  serve    Serve live charts and accept hover events over HTTP
  render   Fetch one range and write the chart page
  record   Poll an agent into an archive file (parquet, jsonl, csv, tsv)
  graph    Generate chart pages from an archive

Examples:
  inspector serve --agent my-agent --port 9090
  inspector render --agent my-agent --window 1h -o charts/
  inspector record --agent my-agent --duration 10m --graph
  inspector graph --all buffer-1a2b3c4d-20240101-120000.parquet`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewServeCmd(),
		NewRenderCmd(),
		NewRecordCmd(),
		NewGraphCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
