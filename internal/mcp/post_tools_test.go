// ABOUTME: Tests for posting MCP tool handlers.
// ABOUTME: Covers login, create_post with images, and read_posts tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/chirp/internal/compose"
	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
	"github.com/2389-research/chirp/internal/storage"
)

// fakeBackend records uploads and posts in memory.
type fakeBackend struct {
	mu         sync.Mutex
	uploads    []string
	posts      []*models.Post
	publishErr error
}

func (f *fakeBackend) UploadMedia(ctx context.Context, a models.Attachment) (models.MediaID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, a.Name)
	return models.MediaID("media-" + a.Name), nil
}

func (f *fakeBackend) PublishPost(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.posts = append(f.posts, post)
	return nil
}

type staticIdentity struct{}

func (staticIdentity) CurrentUser(ctx context.Context) (models.Author, error) {
	return models.Author{ID: "1", Name: "turbo_gecko"}, nil
}

type fakeFeed struct {
	tweets []models.Tweet
	opts   storage.FeedOptions
	err    error
}

func (f *fakeFeed) ReadTweets(ctx context.Context, opts storage.FeedOptions) ([]models.Tweet, error) {
	f.opts = opts
	return f.tweets, f.err
}

// newTestSubmitter builds a submitter over a fake backend. A nil identity
// uses a fixed logged-in author.
func newTestSubmitter(t *testing.T, identity compose.IdentitySource) (*compose.Submitter, *fakeBackend) {
	t.Helper()
	if identity == nil {
		identity = staticIdentity{}
	}
	backend := &fakeBackend{}
	sub, err := compose.NewSubmitter(backend, backend, identity, &notify.Recorder{})
	if err != nil {
		t.Fatalf("NewSubmitter error: %v", err)
	}
	return sub, backend
}

func makePostServer(t *testing.T, opts ...ServerOption) (*Server, *fakeBackend) {
	t.Helper()
	store, err := storage.NewDraftMDStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sub, backend := newTestSubmitter(t, store)
	server, err := NewServer(store, sub, opts...)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return server, backend
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}

	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	handlers := map[string]func(context.Context, *gomcp.CallToolRequest) (*gomcp.CallToolResult, error){
		"login":       s.handleLogin,
		"create_post": s.handleCreatePost,
		"read_posts":  s.handleReadPosts,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func getTextContent(result *gomcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestLoginValid(t *testing.T) {
	s, _ := makePostServer(t)

	result := callTool(t, s, "login", map[string]string{"name": "turbo_gecko", "id": "7"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if !strings.Contains(getTextContent(result), "turbo_gecko") {
		t.Errorf("expected name in response, got: %s", getTextContent(result))
	}

	a, err := s.store.GetIdentity()
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != "7" || a.Name != "turbo_gecko" {
		t.Errorf("expected stored identity {7 turbo_gecko}, got %+v", a)
	}
}

func TestLoginRequiresName(t *testing.T) {
	s, _ := makePostServer(t)

	result := callTool(t, s, "login", map[string]string{"name": ""})
	if !result.IsError {
		t.Error("expected error when name is empty")
	}
}

func TestCreatePostRequiresLogin(t *testing.T) {
	s, backend := makePostServer(t)

	result := callTool(t, s, "create_post", map[string]interface{}{"content": "hello"})
	if !result.IsError {
		t.Fatal("expected error when not logged in")
	}
	if !strings.Contains(getTextContent(result), "not logged in") {
		t.Errorf("expected not logged in message, got: %s", getTextContent(result))
	}
	if len(backend.posts) != 0 {
		t.Error("expected nothing published")
	}
}

func TestCreatePostReturnsNotification(t *testing.T) {
	s, backend := makePostServer(t)
	callTool(t, s, "login", map[string]string{"name": "turbo_gecko"})

	result := callTool(t, s, "create_post", map[string]interface{}{"content": "hello"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if getTextContent(result) != "Tweet sent!" {
		t.Errorf("expected 'Tweet sent!', got %q", getTextContent(result))
	}
	if len(backend.posts) != 1 || backend.posts[0].Text != "hello" {
		t.Fatalf("expected one post 'hello', got %+v", backend.posts)
	}
	if backend.posts[0].Author.Name != "turbo_gecko" {
		t.Errorf("expected author turbo_gecko, got %+v", backend.posts[0].Author)
	}
	if len(backend.posts[0].MediaIDs) != 0 {
		t.Errorf("expected no media, got %v", backend.posts[0].MediaIDs)
	}
}

func TestCreatePostWithImages(t *testing.T) {
	s, backend := makePostServer(t)
	callTool(t, s, "login", map[string]string{"name": "turbo_gecko"})

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.png", "b.png"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("img-"+name), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	result := callTool(t, s, "create_post", map[string]interface{}{
		"content": "two pics",
		"images":  paths,
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}

	if len(backend.uploads) != 2 {
		t.Errorf("expected 2 uploads, got %d", len(backend.uploads))
	}
	ids := backend.posts[0].MediaIDs
	if len(ids) != 2 || ids[0] != "media-a.png" || ids[1] != "media-b.png" {
		t.Errorf("expected media ids in attach order, got %v", ids)
	}
}

func TestCreatePostMissingImage(t *testing.T) {
	s, backend := makePostServer(t)
	callTool(t, s, "login", map[string]string{"name": "turbo_gecko"})

	result := callTool(t, s, "create_post", map[string]interface{}{
		"content": "broken",
		"images":  []string{filepath.Join(t.TempDir(), "missing.png")},
	})
	if !result.IsError {
		t.Fatal("expected error for missing image")
	}
	if len(backend.uploads) != 0 || len(backend.posts) != 0 {
		t.Error("expected no uploads or posts")
	}
}

func TestCreatePostPublishFailure(t *testing.T) {
	s, backend := makePostServer(t)
	backend.publishErr = errors.New("server down")
	callTool(t, s, "login", map[string]string{"name": "turbo_gecko"})

	result := callTool(t, s, "create_post", map[string]interface{}{"content": "hello"})
	if !result.IsError {
		t.Fatal("expected error when publish fails")
	}
	text := getTextContent(result)
	if !strings.Contains(text, "server down") {
		t.Errorf("expected cause in error, got: %s", text)
	}
	if strings.Contains(text, "Tweet sent!") {
		t.Error("expected no success notification on failure")
	}
}

func TestReadPostsWithoutFeed(t *testing.T) {
	s, _ := makePostServer(t)

	result := callTool(t, s, "read_posts", map[string]interface{}{})
	if !result.IsError {
		t.Error("expected error without a feed reader")
	}
}

func TestReadPostsEmpty(t *testing.T) {
	s, _ := makePostServer(t, WithFeedReader(&fakeFeed{}))

	result := callTool(t, s, "read_posts", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if getTextContent(result) != "No posts found." {
		t.Errorf("expected 'No posts found.', got %q", getTextContent(result))
	}
}

func TestReadPostsFormatsFeed(t *testing.T) {
	feed := &fakeFeed{tweets: []models.Tweet{
		{
			ID:          "2",
			Content:     "look at this",
			Attachments: []string{"/media/cat.png"},
			Author:      models.Author{ID: "1", Name: "turbo_gecko"},
			Likes:       []models.Author{{ID: "3", Name: "sleepy_otter"}},
		},
		{ID: "1", Content: "first", Author: models.Author{ID: "3", Name: "sleepy_otter"}},
	}}
	s, _ := makePostServer(t, WithFeedReader(feed))

	result := callTool(t, s, "read_posts", map[string]interface{}{"author": "turbo_gecko", "offset": 2})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if feed.opts.Limit != 10 || feed.opts.Offset != 2 || feed.opts.Author != "turbo_gecko" {
		t.Errorf("unexpected feed options: %+v", feed.opts)
	}

	text := getTextContent(result)
	for _, want := range []string{"@turbo_gecko [2]", "♥1", "look at this", "/media/cat.png", "@sleepy_otter [1]"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output, got:\n%s", want, text)
		}
	}
}

func TestReadPostsError(t *testing.T) {
	s, _ := makePostServer(t, WithFeedReader(&fakeFeed{err: errors.New("timeout")}))

	result := callTool(t, s, "read_posts", map[string]interface{}{})
	if !result.IsError {
		t.Error("expected error from feed reader")
	}
}
