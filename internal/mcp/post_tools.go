// ABOUTME: MCP tool implementations for posting operations.
// ABOUTME: Registers login, create_post, and read_posts tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
	"github.com/2389-research/chirp/internal/storage"
)

func (s *Server) registerPostTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "login",
		Description: "Set the identity posts are published as.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Your handle/username.", "minLength": 1},
				"id": {"type": "string", "description": "Your user id on the backend (optional)"}
			},
			"required": ["name"]
		}`),
	}, s.handleLogin)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "create_post",
		Description: "Publish a post, uploading any attached images first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "The text of the post."},
				"images": {"type": "array", "items": {"type": "string"}, "description": "Paths of image files to attach (optional)"}
			},
			"required": ["content"]
		}`),
	}, s.handleCreatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_posts",
		Description: "Retrieve posts from the feed with optional filtering.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of posts to retrieve (default 10)"},
				"offset": {"type": "number", "description": "Number of posts to skip (default 0)"},
				"author": {"type": "string", "description": "Filter posts by author name"}
			}
		}`),
	}, s.handleReadPosts)
}

func (s *Server) handleLogin(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Name == "" {
		return toolError("name is required"), nil
	}

	if err := s.store.SetIdentity(models.Author{ID: args.ID, Name: args.Name}); err != nil {
		return toolError("failed to set identity: %v", err), nil
	}

	return textResult(fmt.Sprintf("Logged in as %s", args.Name)), nil
}

func (s *Server) handleCreatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	attachments, err := models.LoadAttachments(args.Images)
	if err != nil {
		return toolError("%v", err), nil
	}

	rec := &notify.Recorder{}
	if err := s.submitter.WithNotifier(rec).Submit(ctx, args.Content, attachments); err != nil {
		return toolError("failed to create post: %v", err), nil
	}

	var lines []string
	for _, n := range rec.Notifications() {
		lines = append(lines, n.Message)
	}
	return textResult(strings.Join(lines, "\n")), nil
}

func (s *Server) handleReadPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if s.feed == nil {
		return toolError("reading posts requires the api backend"), nil
	}

	if args.Limit <= 0 {
		args.Limit = 10
	}

	tweets, err := s.feed.ReadTweets(ctx, storage.FeedOptions{
		Limit:  args.Limit,
		Offset: args.Offset,
		Author: args.Author,
	})
	if err != nil {
		return toolError("failed to read posts: %v", err), nil
	}

	if len(tweets) == 0 {
		return textResult("No posts found."), nil
	}

	var sb strings.Builder
	for _, tw := range tweets {
		sb.WriteString(fmt.Sprintf("---\n@%s [%s]", tw.Author, tw.ID))
		if len(tw.Likes) > 0 {
			sb.WriteString(fmt.Sprintf(" ♥%d", len(tw.Likes)))
		}
		sb.WriteString(fmt.Sprintf("\n%s\n", tw.Content))
		for _, a := range tw.Attachments {
			sb.WriteString(fmt.Sprintf("  %s\n", a))
		}
	}

	return textResult(sb.String()), nil
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
