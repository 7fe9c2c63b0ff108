// Package graph implements the dependency graph visualization command.
package graph

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/claudianadalin/pinecone/config"
	"github.com/claudianadalin/pinecone/depgraph"
	"github.com/claudianadalin/pinecone/resolver"
)

var configPath string
var outputFormat string
var copyToClipboard bool

// Cmd represents the graph command
var Cmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the project's module dependency graph",
	Long: `Resolve the project's import graph and print it in a visualization
format.

Examples:
  pinecone graph                  # Graphviz DOT on stdout
  pinecone graph -f mermaid       # Mermaid flowchart
  pinecone graph -b               # also copy output to the clipboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		rg, err := resolver.Resolve(cfg.Entry, cfg.RootDir)
		if err != nil {
			return err
		}

		formatter, err := depgraph.NewFormatter(outputFormat)
		if err != nil {
			return err
		}

		output, err := formatter.Format(rg, cfg.RootDir)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), output)

		if copyToClipboard {
			if err := clipboard.WriteAll(output); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println("\n✅ Content copied to your clipboard.")
		}

		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pine.config.json (default: current directory)")
	Cmd.Flags().StringVarP(&outputFormat, "format", "f", string(depgraph.OutputFormatDOT),
		fmt.Sprintf("Output format (%s, %s)", depgraph.OutputFormatDOT, depgraph.OutputFormatMermaid))
	Cmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "b", false, "Automatically copy output to clipboard")
}
