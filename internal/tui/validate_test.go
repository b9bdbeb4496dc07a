// ABOUTME: Tests for tweet API connection validation.
// ABOUTME: Uses httptest to check the profile lookup and how failures surface.
package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2389-research/chirp/internal/storage"
)

func TestValidateConnection_ResolvesAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users/me" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("api-key"); got != "test-key" {
			t.Errorf("api-key header = %q", got)
		}
		_, _ = w.Write([]byte(`{"result": true, "user": {"id": 1, "name": "turbo_gecko", "followers": [], "following": []}}`))
	}))
	defer server.Close()

	author, err := ValidateConnection(context.Background(), server.URL, "test-key")
	if err != nil {
		t.Fatalf("ValidateConnection: %v", err)
	}
	if author != gecko {
		t.Errorf("author = %+v, want %+v", author, gecko)
	}
}

func TestValidateConnection_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		apiErr  bool
		keyHint bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"result": false, "error_type": "Unauthorized", "error_massage": "Not authorized"}`, true, true},
		{"unregistered key", http.StatusForbidden, `{"result": false, "error_type": "Unauthorized", "error_message": "User has no registered"}`, true, true},
		{"server error", http.StatusInternalServerError, `internal error`, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := ValidateConnection(context.Background(), server.URL, "k")
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.apiErr && !storage.IsAPIError(err, tc.status) {
				t.Errorf("expected APIError with status %d, got %v", tc.status, err)
			}
			if got := strings.HasPrefix(err.Error(), "invalid API key"); got != tc.keyHint {
				t.Errorf("invalid key hint = %v, want %v (err %q)", got, tc.keyHint, err)
			}
		})
	}
}

func TestValidateConnection_Unreachable(t *testing.T) {
	if _, err := ValidateConnection(context.Background(), "http://localhost:1", "k"); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestValidateConnection_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": true, "user": {"id": 1, "name": "x"}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ValidateConnection(ctx, server.URL, "k"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
