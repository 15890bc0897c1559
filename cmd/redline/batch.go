package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/core"
)

var (
	batchInclude []string
	batchExclude []string
)

var batchCmd = &cobra.Command{
	Use:   "batch [root]",
	Short: "Accept tracked changes in every document below a directory",
	Long: `Review every document below root matched by the include patterns and not by the
exclude patterns. Each result is written next to its source, named with the configured suffix.
A failing document does not stop the batch.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if cmd.Flags().Changed("include") {
			cfg.Include = batchInclude
		}
		if cmd.Flags().Changed("exclude") {
			cfg.Exclude = batchExclude
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		events, err := newRunner(cfg).Batch(context.Background(), root, cfg)
		if err != nil {
			fatal("Batch failed", err)
		}

		var total core.Stats
		failed := 0
		for _, e := range events {
			printEvent(e)
			if e.Type == core.EventFailed {
				failed++
			}
			total = total.Add(e.Stats)
		}

		fmt.Printf("%d documents, %d revisions accepted, %d failed\n", len(events), total.Revisions(), failed)
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&suffix, "suffix", "", "Suffix inserted before the extension of each output (empty reviews in place)")
	batchCmd.Flags().StringSliceVar(&batchInclude, "include", nil, "Doublestar patterns selecting documents")
	batchCmd.Flags().StringSliceVar(&batchExclude, "exclude", nil, "Doublestar patterns skipping documents")
}

func printEvent(e core.Event) {
	switch e.Type {
	case core.EventFailed:
		color.Red("%s", e)
	case core.EventReviewed:
		color.Green("%s", e)
	default:
		fmt.Println(e)
	}
}
