package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	revisionsJSON bool
)

var revisionsCmd = &cobra.Command{
	Use:   "revisions [doc]",
	Short: "List the tracked changes of a document",
	Long:  `List the tracked changes of the main document part in document order, or as JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runner := newRunner(loadConfig(cmd))

		infos, err := runner.Revisions(context.Background(), args[0])
		if err != nil {
			fatal("Error inspecting document", err)
		}

		if revisionsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(infos); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if len(infos) == 0 {
			color.Green("No tracked changes.")
			return
		}
		for _, info := range infos {
			kind := color.CyanString("%-26s", info.Kind)
			switch info.Kind {
			case "insertion":
				kind = color.GreenString("%-26s", info.Kind)
			case "deletion":
				kind = color.RedString("%-26s", info.Kind)
			}
			fmt.Printf("%s #%-4s %-16s %s %q\n", kind, info.ID, info.Author, info.Date, info.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(revisionsCmd)
	revisionsCmd.Flags().BoolVar(&revisionsJSON, "json", false, "Output in JSON format")
}
