// ABOUTME: MCP server command implementation for chirp.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/config"
	mcppkg "github.com/2389-research/chirp/internal/mcp"
	"github.com/2389-research/chirp/internal/notify"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents like Claude
to publish posts with images through a standardized protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Each create_post call swaps in its own recorder; this one is never read.
	submitter, err := newSubmitter(&notify.Recorder{})
	if err != nil {
		return err
	}

	var opts []mcppkg.ServerOption
	if globalConfig.GetBackend() == config.BackendAPI {
		remote, err := requireRemote()
		if err != nil {
			return err
		}
		opts = append(opts, mcppkg.WithFeedReader(remote))
	}

	server, err := mcppkg.NewServer(globalStore, submitter, opts...)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
