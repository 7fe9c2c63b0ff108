// Package build implements the one-shot bundling command.
package build

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/claudianadalin/pinecone/bundler"
	"github.com/claudianadalin/pinecone/config"
)

var configPath string
var copyToClipboard bool

// Cmd represents the build command
var Cmd = &cobra.Command{
	Use:   "build",
	Short: "Bundle the project into a single Pine Script file",
	Long: `Resolve the project's import graph starting from the configured entry
file, rename module identifiers under their namespace prefixes, and write
the merged script to the configured output path.

Examples:
  pinecone build                       # use ./pine.config.json
  pinecone build -c path/to/config     # explicit config file
  pinecone build -b                    # also copy the bundle to the clipboard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := Run(configPath)
		if err != nil {
			return err
		}

		if copyToClipboard {
			if err := clipboard.WriteAll(result.Output); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println("\n✅ Bundle copied to your clipboard.")
		}

		return nil
	},
}

// Run executes one bundling pass: load config, bundle, write output.
func Run(configPath string) (*bundler.Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	result, err := bundler.Bundle(cfg)
	if err != nil {
		return nil, err
	}

	if err := bundler.WriteBundle(result); err != nil {
		return nil, err
	}

	logger().Info("bundled",
		"modules", result.ModulesCount,
		"output", result.OutputPath)
	return result, nil
}

func logger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "pinecone",
	})
}

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pine.config.json (default: current directory)")
	Cmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "b", false, "Copy the bundled output to the clipboard")
}
