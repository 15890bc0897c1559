package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [doc]",
	Short: "Print the main document part",
	Long:  `Print the XML of the main document part of a package, as stored. Accepts a path or a URL.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runner := newRunner(loadConfig(cmd))

		text, err := runner.Show(context.Background(), args[0])
		if err != nil {
			fatal("Error reading document", err)
		}
		fmt.Println(text)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
