// Package watch implements the continuous rebuild command.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/claudianadalin/pinecone/bundler"
	"github.com/claudianadalin/pinecone/config"
)

var configPath string
var debounce time.Duration

// Cmd represents the watch command.
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch project files and rebuild the bundle on changes",
	Long: `Watch the project root for changes to .pine files and rebuild the
bundle automatically. Rapid successive saves are coalesced into a single
rebuild. A failed build is reported and watching continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func runWatch(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "pinecone",
	})

	// The debounce timer fires on its own goroutine; the mutex keeps an
	// in-progress rebuild from being interleaved with the next one.
	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()

		result, err := bundler.Bundle(cfg)
		if err != nil {
			logger.Error("build failed", "error", err)
			return
		}
		if err := bundler.WriteBundle(result); err != nil {
			logger.Error("write failed", "error", err)
			return
		}
		logger.Info("bundled",
			"modules", result.ModulesCount,
			"output", result.OutputPath)
	}

	rebuild()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching for changes in %s\n", cfg.SrcDir())
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, cfg, debounce, rebuild)
}

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pine.config.json (default: current directory)")
	Cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Delay before rebuilding after a change")
}
