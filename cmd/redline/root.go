package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline/internal/platform"
)

var (
	verbose    bool
	configPath string

	removeComments bool
	suffix         string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Accept every tracked change in Word documents",
	Long: `redline finishes the review of WordprocessingML packages (.docx and friends).
Insertions are kept, deletions are dropped and previous formatting is discarded.
Every other part of the package is left byte for byte as it was.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: nearest "+platform.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVar(&removeComments, "remove-comments", false, "Also remove comment anchors and comment parts")
}

// loadConfig resolves the config file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) platform.Config {
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}

	cfg, path, err := platform.ResolveConfig(configPath, wd)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if path != "" {
		slog.Debug("config loaded", "path", path)
	}

	if cmd.Flags().Changed("remove-comments") {
		cfg.RemoveComments = removeComments
	}
	if f := cmd.Flags().Lookup("suffix"); f != nil && f.Changed {
		cfg.Suffix = suffix
	}
	return cfg
}

func newRunner(cfg platform.Config) *platform.Runner {
	return platform.NewRunner(
		platform.WithRemoveComments(cfg.RemoveComments),
		platform.WithLogger(slog.Default()),
		platform.WithWatcherErrorHandler(func(err error) {
			slog.Error("watcher failed", "error", err)
		}),
	)
}
