// ABOUTME: Tests for markdown and SQLite draft stores.
// ABOUTME: Runs the same roundtrip, clear, and identity scenarios against both drivers.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/chirp/internal/models"
)

func eachDriver(t *testing.T, fn func(t *testing.T, store DraftStore)) {
	t.Helper()
	for _, driver := range []string{DriverMarkdown, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			store, err := Open(driver, t.TempDir())
			if err != nil {
				t.Fatalf("Open(%s) error: %v", driver, err)
			}
			defer func() { _ = store.Close() }()
			fn(t, store)
		})
	}
}

func TestDraftEmptyByDefault(t *testing.T) {
	eachDriver(t, func(t *testing.T, store DraftStore) {
		d, err := store.GetDraft()
		if err != nil {
			t.Fatalf("GetDraft error: %v", err)
		}
		if !d.IsEmpty() {
			t.Errorf("expected empty draft, got %+v", d)
		}
	})
}

func TestDraftRoundtrip(t *testing.T) {
	eachDriver(t, func(t *testing.T, store DraftStore) {
		d := models.NewDraft()
		d.Text = "hello\nsecond line"
		d.Images = []string{"/tmp/b.png", "/tmp/a.png"}
		d.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

		if err := store.SaveDraft(d); err != nil {
			t.Fatalf("SaveDraft error: %v", err)
		}

		got, err := store.GetDraft()
		if err != nil {
			t.Fatalf("GetDraft error: %v", err)
		}
		if got.ID != d.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, d.ID)
		}
		if got.Text != d.Text {
			t.Errorf("Text: got %q, want %q", got.Text, d.Text)
		}
		if len(got.Images) != 2 || got.Images[0] != "/tmp/b.png" || got.Images[1] != "/tmp/a.png" {
			t.Errorf("Images: got %v, want [/tmp/b.png /tmp/a.png]", got.Images)
		}
		if !got.UpdatedAt.Equal(d.UpdatedAt) {
			t.Errorf("UpdatedAt: got %s, want %s", got.UpdatedAt, d.UpdatedAt)
		}
	})
}

func TestDraftSaveReplaces(t *testing.T) {
	eachDriver(t, func(t *testing.T, store DraftStore) {
		first := models.NewDraft()
		first.Text = "first"
		first.Images = []string{"one.png", "two.png"}
		if err := store.SaveDraft(first); err != nil {
			t.Fatal(err)
		}

		second := models.NewDraft()
		second.Text = "second"
		if err := store.SaveDraft(second); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetDraft()
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != second.ID || got.Text != "second" || len(got.Images) != 0 {
			t.Errorf("expected second draft only, got %+v", got)
		}
	})
}

func TestDraftClear(t *testing.T) {
	eachDriver(t, func(t *testing.T, store DraftStore) {
		d := models.NewDraft()
		d.Text = "to be cleared"
		if err := store.SaveDraft(d); err != nil {
			t.Fatal(err)
		}
		if err := store.ClearDraft(); err != nil {
			t.Fatalf("ClearDraft error: %v", err)
		}
		// Clearing twice is fine.
		if err := store.ClearDraft(); err != nil {
			t.Fatalf("second ClearDraft error: %v", err)
		}

		got, err := store.GetDraft()
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsEmpty() {
			t.Errorf("expected empty draft after clear, got %+v", got)
		}
	})
}

func TestIdentity(t *testing.T) {
	eachDriver(t, func(t *testing.T, store DraftStore) {
		a, err := store.GetIdentity()
		if err != nil {
			t.Fatalf("GetIdentity error: %v", err)
		}
		if !a.IsZero() {
			t.Errorf("expected zero identity, got %+v", a)
		}

		if _, err := store.CurrentUser(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
			t.Errorf("expected ErrNotLoggedIn, got %v", err)
		}

		if err := store.SetIdentity(models.Author{ID: "1", Name: "turbo_gecko"}); err != nil {
			t.Fatalf("SetIdentity error: %v", err)
		}
		if err := store.SetIdentity(models.Author{ID: "2", Name: "sleepy_otter"}); err != nil {
			t.Fatalf("SetIdentity overwrite error: %v", err)
		}

		got, err := store.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser error: %v", err)
		}
		if got.ID != "2" || got.Name != "sleepy_otter" {
			t.Errorf("CurrentUser = %+v, want {2 sleepy_otter}", got)
		}
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", t.TempDir()); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(DriverMarkdown, ""); err == nil {
		t.Error("expected error for empty markdown dir")
	}
	if _, err := Open(DriverSQLite, ""); err == nil {
		t.Error("expected error for empty sqlite dir")
	}
}

func TestDraftMDFileFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDraftMDStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	d := models.NewDraft()
	d.Text = "body text"
	d.Images = []string{"cat.png"}
	if err := store.SaveDraft(d); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "draft.md"))
	if err != nil {
		t.Fatalf("expected draft.md on disk: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Errorf("expected frontmatter, got %q", content)
	}
	if !strings.Contains(content, "id: "+d.ID.String()) {
		t.Errorf("expected id in frontmatter, got %q", content)
	}
	if !strings.Contains(content, "- cat.png") {
		t.Errorf("expected image list in frontmatter, got %q", content)
	}
	if !strings.HasSuffix(content, "---\nbody text\n") {
		t.Errorf("expected body after frontmatter, got %q", content)
	}
}

func TestDraftMDCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDraftMDStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "draft.md"), []byte("no frontmatter here"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDraft(); err == nil {
		t.Error("expected error for draft without frontmatter")
	}
}
