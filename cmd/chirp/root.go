// ABOUTME: Root Cobra command and global flags for chirp CLI.
// ABOUTME: Sets up lifecycle hooks for config loading, logging, and store initialization.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/config"
	"github.com/2389-research/chirp/internal/logging"
	"github.com/2389-research/chirp/internal/storage"
)

var globalConfig *config.Config
var globalStore storage.DraftStore
var globalLogger = zerolog.Nop()

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chirp",
	Short: "Compose and send posts with images from the terminal",
	Long: `
 ██████╗██╗  ██╗██╗██████╗ ██████╗
██╔════╝██║  ██║██║██╔══██╗██╔══██╗
██║     ███████║██║██████╔╝██████╔╝
██║     ██╔══██║██║██╔══██╗██╔═══╝
╚██████╗██║  ██║██║██║  ██║██║
 ╚═════╝╚═╝  ╚═╝╚═╝╚═╝  ╚═╝╚═╝

Draft posts, attach images, and send them to a tweet API or X.
Images upload in parallel; the post goes out once every upload is done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Name() != "setup" {
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		globalConfig = cfg

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		globalLogger = logging.New(os.Stderr, level)

		storePath, err := cfg.GetStorePath()
		if err != nil {
			return fmt.Errorf("failed to resolve store path: %w", err)
		}
		store, err := storage.Open(cfg.GetStoreDriver(), storePath)
		if err != nil {
			return fmt.Errorf("failed to open draft store: %w", err)
		}
		globalStore = store

		globalLogger.Debug().
			Str("backend", cfg.GetBackend()).
			Str("store", cfg.GetStoreDriver()).
			Str("path", storePath).
			Msg("initialized")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalStore != nil {
			_ = globalStore.Close()
			globalStore = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log uploads and requests to stderr")
}
