// ABOUTME: SQLite-based draft storage with identity persistence.
// ABOUTME: Keeps a single draft row, its ordered image paths, and the session author.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/2389-research/chirp/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS drafts (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS draft_images (
	draft_id TEXT NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	path     TEXT NOT NULL,
	PRIMARY KEY (draft_id, position)
);
CREATE TABLE IF NOT EXISTS identity (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	id   TEXT NOT NULL,
	name TEXT NOT NULL
);
`

// DraftSQLiteStore stores the draft and identity in a SQLite database.
type DraftSQLiteStore struct {
	db *sql.DB
}

// NewDraftSQLiteStore opens (or creates) chirp.db inside dataDir.
func NewDraftSQLiteStore(dataDir string) (*DraftSQLiteStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return openSQLite(filepath.Join(dataDir, "chirp.db"))
}

func openSQLite(dsn string) (*DraftSQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DraftSQLiteStore{db: db}, nil
}

// GetDraft returns the saved draft, or a new empty draft when none exists.
func (s *DraftSQLiteStore) GetDraft() (*models.Draft, error) {
	ctx := context.Background()

	var idStr, text, updated string
	err := s.db.QueryRowContext(ctx, `SELECT id, text, updated_at FROM drafts LIMIT 1`).Scan(&idStr, &text, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewDraft(), nil
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM draft_images WHERE draft_id = ? ORDER BY position`, idStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var images []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		images = append(images, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.Draft{ID: id, Text: text, Images: images, UpdatedAt: updatedAt}, nil
}

// SaveDraft replaces the stored draft in a single transaction.
func (s *DraftSQLiteStore) SaveDraft(d *models.Draft) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO drafts (id, text, updated_at) VALUES (?, ?, ?)`,
		d.ID.String(), d.Text, d.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	for i, p := range d.Images {
		if _, err := tx.ExecContext(ctx, `INSERT INTO draft_images (draft_id, position, path) VALUES (?, ?, ?)`,
			d.ID.String(), i, p); err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}
	return tx.Commit()
}

// ClearDraft removes the stored draft and its images.
func (s *DraftSQLiteStore) ClearDraft() error {
	_, err := s.db.Exec(`DELETE FROM drafts`)
	return err
}

// GetIdentity returns the currently set author.
func (s *DraftSQLiteStore) GetIdentity() (models.Author, error) {
	var a models.Author
	err := s.db.QueryRow(`SELECT id, name FROM identity WHERE slot = 1`).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, nil
	}
	return a, err
}

// SetIdentity persists the author.
func (s *DraftSQLiteStore) SetIdentity(a models.Author) error {
	_, err := s.db.Exec(`INSERT INTO identity (slot, id, name) VALUES (1, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET id = excluded.id, name = excluded.name`, a.ID, a.Name)
	return err
}

// CurrentUser implements compose.IdentitySource.
func (s *DraftSQLiteStore) CurrentUser(ctx context.Context) (models.Author, error) {
	return currentUser(s)
}

// Close closes the database.
func (s *DraftSQLiteStore) Close() error {
	return s.db.Close()
}
