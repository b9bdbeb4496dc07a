// ABOUTME: Markdown-based draft storage with identity persistence.
// ABOUTME: Stores the current draft as a markdown file with YAML frontmatter and identity in YAML.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/chirp/internal/models"
)

// DraftMDStore stores the draft and identity as files in a data directory.
type DraftMDStore struct {
	dataDir string // root directory for chirp data
}

// draftFrontmatter is the YAML frontmatter for draft.md.
type draftFrontmatter struct {
	ID        string   `yaml:"id"`
	UpdatedAt string   `yaml:"updated_at"`
	Images    []string `yaml:"images,omitempty"`
}

// identityFile is the YAML structure for _identity.yaml.
type identityFile struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name"`
}

// NewDraftMDStore creates a draft store with the given data directory.
func NewDraftMDStore(dataDir string) (*DraftMDStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	return &DraftMDStore{
		dataDir: dataDir,
	}, nil
}

func (s *DraftMDStore) draftPath() string {
	return filepath.Join(s.dataDir, "draft.md")
}

func (s *DraftMDStore) identityPath() string {
	return filepath.Join(s.dataDir, "_identity.yaml")
}

// GetDraft reads draft.md, returning an empty draft if it does not exist.
func (s *DraftMDStore) GetDraft() (*models.Draft, error) {
	data, err := os.ReadFile(s.draftPath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewDraft(), nil
		}
		return nil, err
	}
	return parseDraft(string(data))
}

// SaveDraft writes the draft atomically.
func (s *DraftMDStore) SaveDraft(d *models.Draft) error {
	fm := draftFrontmatter{
		ID:        d.ID.String(),
		UpdatedAt: formatTime(d.UpdatedAt),
		Images:    d.Images,
	}

	content, err := renderFrontmatter(fm, d.Text+"\n")
	if err != nil {
		return fmt.Errorf("failed to render draft: %w", err)
	}

	return atomicWrite(s.draftPath(), []byte(content))
}

// ClearDraft removes draft.md. Clearing a missing draft is not an error.
func (s *DraftMDStore) ClearDraft() error {
	if err := os.Remove(s.draftPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetIdentity returns the currently set author.
func (s *DraftMDStore) GetIdentity() (models.Author, error) {
	var id identityFile
	if err := readYAML(s.identityPath(), &id); err != nil {
		return models.Author{}, err
	}
	return models.Author{ID: id.ID, Name: id.Name}, nil
}

// SetIdentity persists the author.
func (s *DraftMDStore) SetIdentity(a models.Author) error {
	return writeYAML(s.identityPath(), &identityFile{ID: a.ID, Name: a.Name})
}

// CurrentUser implements compose.IdentitySource.
func (s *DraftMDStore) CurrentUser(ctx context.Context) (models.Author, error) {
	return currentUser(s)
}

// Close releases any resources held by the store.
func (s *DraftMDStore) Close() error {
	return nil
}

// parseDraft parses draft.md content into a Draft.
func parseDraft(content string) (*models.Draft, error) {
	yamlStr, body := parseFrontmatter(content)
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter found")
	}

	var fm draftFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}

	updatedAt, err := parseTime(fm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	return &models.Draft{
		ID:        id,
		Text:      strings.TrimSuffix(body, "\n"),
		Images:    fm.Images,
		UpdatedAt: updatedAt,
	}, nil
}
