package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/claudianadalin/pinecone/cmd/build"
	"github.com/claudianadalin/pinecone/cmd/graph"
	"github.com/claudianadalin/pinecone/cmd/scaffold"
	"github.com/claudianadalin/pinecone/cmd/watch"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pinecone",
	Short: "Bundle multi-file Pine Script projects into a single script",
	Long: `Pinecone is a build tool for Pine Script. It lets you split an
indicator or strategy across multiple .pine files, declare dependencies
with // @import and // @export comment directives, and bundle everything
into one TradingView-ready script.

Use 'pinecone --help' to see all available commands, or 'pinecone <command> --help'
for detailed information about a specific command.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(build.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(graph.Cmd)
	rootCmd.AddCommand(scaffold.Cmd)

	if rootCmd.Annotations == nil {
		rootCmd.Annotations = make(map[string]string)
	}
	rootCmd.Annotations["buildDate"] = buildDate
	rootCmd.Annotations["commit"] = commit

	rootCmd.Version = version

	// Customize version template to show additional build info
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)
}
