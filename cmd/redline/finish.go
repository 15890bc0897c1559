package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/core"
)

var (
	finishDiff bool
)

var finishCmd = &cobra.Command{
	Use:   "finish [src] [dst]",
	Short: "Accept every tracked change of a document",
	Long: `Accept every tracked change of a document.
With a destination, the source is copied there first and only the copy is rewritten.
Without one, the source is reviewed in place. Paths and URLs may be mixed.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		runner := newRunner(loadConfig(cmd))

		src, dst := args[0], ""
		if len(args) == 2 {
			dst = args[1]
		}

		var before string
		if finishDiff {
			text, err := runner.Show(ctx, src)
			if err != nil {
				fatal("Error reading document", err)
			}
			before = text
		}

		review, err := runner.ReviewFile(ctx, src, dst)
		if err != nil {
			fatal("Error finishing review", err)
		}

		if finishDiff {
			if diff := cmp.Diff(paragraphs(before), paragraphs(review.Text)); diff != "" {
				fmt.Print(diff)
			}
		}

		if !review.Changed() {
			color.Green("Nothing to accept.")
			return
		}
		printStats(review.Stats)
		for _, name := range review.Removed {
			color.Yellow("removed %s", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(finishCmd)
	finishCmd.Flags().BoolVar(&finishDiff, "diff", false, "Print the main part before and after, paragraph by paragraph")
}

// paragraphs splits serialized body XML before each paragraph or table so that a diff
// lines up with the document structure.
func paragraphs(text string) []string {
	var out []string
	for text != "" {
		i := nextBlock(text[1:])
		if i < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:i+1])
		text = text[i+1:]
	}
	return out
}

func nextBlock(s string) int {
	best := -1
	for _, tag := range []string{"<w:p>", "<w:p ", "<w:tbl>", "<w:tbl "} {
		if i := strings.Index(s, tag); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func printStats(s core.Stats) {
	color.Green("accepted %d revisions", s.Revisions())
	counts := []struct {
		label string
		n     int
	}{
		{"insertions", s.Insertions},
		{"deletions", s.Deletions},
		{"paragraph property changes", s.ParagraphPropertyChanges},
		{"run property changes", s.RunPropertyChanges},
		{"table property changes", s.TablePropertyChanges},
		{"section property changes", s.SectionPropertyChanges},
		{"merged paragraphs", s.MergedParagraphs},
		{"comment anchors", s.CommentAnchors},
		{"comment parts", s.CommentParts},
	}
	for _, c := range counts {
		if c.n > 0 {
			fmt.Printf("  %-28s %d\n", c.label, c.n)
		}
	}
}
