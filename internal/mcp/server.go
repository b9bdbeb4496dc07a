// ABOUTME: MCP server initialization and configuration for chirp.
// ABOUTME: Sets up server with login, posting, and feed tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/chirp/internal/compose"
	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/storage"
)

// FeedReader lists posts from the configured backend.
type FeedReader interface {
	ReadTweets(ctx context.Context, opts storage.FeedOptions) ([]models.Tweet, error)
}

// Server wraps the MCP server with the draft store and submitter.
type Server struct {
	mcp       *gomcp.Server
	store     storage.DraftStore
	submitter *compose.Submitter
	feed      FeedReader
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithFeedReader enables the read_posts tool.
func WithFeedReader(r FeedReader) ServerOption {
	return func(s *Server) {
		s.feed = r
	}
}

// NewServer creates an MCP server with posting capabilities.
func NewServer(store storage.DraftStore, submitter *compose.Submitter, opts ...ServerOption) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store is required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "chirp",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		submitter: submitter,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPostTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
