// ABOUTME: Tests for MCP server creation and validation.
// ABOUTME: Verifies server requires a draft store and a submitter.
package mcp

import (
	"testing"

	"github.com/2389-research/chirp/internal/storage"
)

func TestNewServerRequiresStore(t *testing.T) {
	sub, _ := newTestSubmitter(t, nil)
	if _, err := NewServer(nil, sub); err == nil {
		t.Error("expected error when draft store is nil")
	}
}

func TestNewServerRequiresSubmitter(t *testing.T) {
	store, _ := storage.NewDraftMDStore(t.TempDir())
	if _, err := NewServer(store, nil); err == nil {
		t.Error("expected error when submitter is nil")
	}
}

func TestNewServerSuccess(t *testing.T) {
	store, _ := storage.NewDraftMDStore(t.TempDir())
	sub, _ := newTestSubmitter(t, store)

	server, err := NewServer(store, sub)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server == nil {
		t.Fatal("expected non-nil server")
	}
	if server.feed != nil {
		t.Error("expected no feed reader by default")
	}
}

func TestNewServerWithFeedReader(t *testing.T) {
	store, _ := storage.NewDraftMDStore(t.TempDir())
	sub, _ := newTestSubmitter(t, store)
	remote := storage.NewRemoteClient("http://example.com", "key")

	server, err := NewServer(store, sub, WithFeedReader(remote))
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server.feed == nil {
		t.Error("expected feed reader to be set")
	}
}
