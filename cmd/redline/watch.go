package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/introspection"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/adapters/lifecycle"
	"github.com/aretw0/redline/pkg/core"
)

var (
	watchShowClean bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Accept tracked changes whenever a document is saved",
	Long: `Watch a directory tree and review each matching document shortly after it is written.
Results are named with the configured suffix. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := newRunner(cfg)
		events, watcher, err := runner.Watch(ctx, dir, cfg)
		if err != nil {
			fatal("Failed to watch", err)
		}

		source := lifecycle.NewSource(events, lifecycle.WithSkipClean(!watchShowClean))
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start event source", err)
		}

		color.Cyan("Watching %s (suffix %q). Press Ctrl+C to stop.", dir, cfg.Suffix)
		for ev := range source.Events() {
			if e, ok := ev.(core.Event); ok {
				printEvent(e)
				continue
			}
			fmt.Println(ev)
		}

		report(runner.Service(), watcher, source)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&suffix, "suffix", "", "Suffix inserted before the extension of each output (empty reviews in place)")
	watchCmd.Flags().BoolVar(&watchShowClean, "show-clean", false, "Also report documents that had nothing to accept")
}

// report logs the final state of each component.
func report(components ...introspection.Introspectable) {
	for _, c := range components {
		name := "component"
		if typed, ok := c.(introspection.Component); ok {
			name = typed.ComponentType()
		}
		slog.Info("final state", "component", name, "state", fmt.Sprintf("%+v", c.State()))
	}
}
