// ABOUTME: Connection validation for the tweet API.
// ABOUTME: Tests credentials by fetching the profile bound to the API key.
package tui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/storage"
)

// ValidateConnection tests the API connection by fetching /api/users/me with the given key.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, apiURL, apiKey string) (models.Author, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	author, err := storage.NewRemoteClient(apiURL, apiKey).CurrentUser(ctx)
	if storage.IsAPIError(err, http.StatusUnauthorized) || storage.IsAPIError(err, http.StatusForbidden) {
		return models.Author{}, fmt.Errorf("invalid API key: %w", err)
	}
	if err != nil {
		return models.Author{}, fmt.Errorf("connection failed: %w", err)
	}
	return author, nil
}
