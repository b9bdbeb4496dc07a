// ABOUTME: Interface definition for draft and session identity storage.
// ABOUTME: Defines the contract for persisting the current draft and the logged-in author.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389-research/chirp/internal/models"
)

// ErrNotLoggedIn is returned by CurrentUser when no identity has been set.
var ErrNotLoggedIn = errors.New("not logged in - run 'chirp login <name>' first")

// DraftStore defines operations for draft and identity persistence.
type DraftStore interface {
	// GetDraft returns the saved draft, or a new empty draft when none exists.
	GetDraft() (*models.Draft, error)

	// SaveDraft persists the draft, replacing any previous one.
	SaveDraft(d *models.Draft) error

	// ClearDraft removes the saved draft.
	ClearDraft() error

	// GetIdentity returns the session author, or a zero Author if unset.
	GetIdentity() (models.Author, error)

	// SetIdentity persists the session author.
	SetIdentity(a models.Author) error

	// CurrentUser returns the session author, failing with ErrNotLoggedIn if unset.
	CurrentUser(ctx context.Context) (models.Author, error)

	// Close releases any resources held by the store.
	Close() error
}

// Store drivers accepted by Open.
const (
	DriverMarkdown = "markdown"
	DriverSQLite   = "sqlite"
)

// Open creates the draft store for the named driver rooted at dir.
func Open(driver, dir string) (DraftStore, error) {
	switch driver {
	case "", DriverMarkdown:
		return NewDraftMDStore(dir)
	case DriverSQLite:
		return NewDraftSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// currentUser applies the not-logged-in rule on top of GetIdentity.
func currentUser(s DraftStore) (models.Author, error) {
	a, err := s.GetIdentity()
	if err != nil {
		return models.Author{}, err
	}
	if a.IsZero() {
		return models.Author{}, ErrNotLoggedIn
	}
	return a, nil
}
