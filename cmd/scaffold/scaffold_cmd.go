// Package scaffold implements the project initialization command.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/claudianadalin/pinecone/config"
)

const defaultConfig = `{
  "entry": "src/main.pine",
  "output": "dist/bundle.pine"
}
`

const starterScript = `//@version=5
indicator("My Indicator", overlay=true)

plot(close)
`

var flagForce bool

// Cmd represents the init command
var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter Pine Script project in the current directory",
	Long: `Create a pine.config.json and a src/main.pine starter file in the
current directory. Existing files are left untouched unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		return run(cmd, wd)
	},
}

func run(cmd *cobra.Command, dir string) error {
	files := []struct {
		name    string
		content string
	}{
		{config.Filename, defaultConfig},
		{filepath.Join("src", "main.pine"), starterScript},
	}

	for _, file := range files {
		name, content := file.name, file.content
		path := filepath.Join(dir, name)

		if _, err := os.Stat(path); err == nil && !flagForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s (already exists, use --force to overwrite)\n", name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nProject ready. Run 'pinecone build' to bundle it.")
	return nil
}

func init() {
	Cmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite existing files")
}
