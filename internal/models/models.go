// ABOUTME: Core data models for drafts, attachments, posts, and notifications.
// ABOUTME: Provides constructor functions and type definitions shared by chirp packages.
package models

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft is an in-progress, unsent composition.
type Draft struct {
	ID        uuid.UUID
	Text      string
	Images    []string // attachment file paths, in attach order
	UpdatedAt time.Time
}

// NewDraft creates an empty draft with a generated UUID.
func NewDraft() *Draft {
	return &Draft{
		ID:        uuid.New(),
		UpdatedAt: time.Now(),
	}
}

// IsEmpty reports whether the draft has neither text nor images.
func (d *Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == "" && len(d.Images) == 0
}

// Attachment is an image loaded into memory for upload.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// MediaID is the opaque identifier returned by an upload endpoint.
type MediaID string

// Author references the user a post is published as.
type Author struct {
	ID   string
	Name string
}

// IsZero reports whether no identity is set.
func (a Author) IsZero() bool {
	return a.ID == "" && a.Name == ""
}

// String returns the display handle for the author.
func (a Author) String() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Post is the payload handed to a publisher.
type Post struct {
	Text     string
	MediaIDs []MediaID
	Author   Author
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Severity Severity
	Message  string
}

// Tweet is a post as returned by a feed.
type Tweet struct {
	ID          string
	Content     string
	Attachments []string
	Author      Author
	Likes       []Author
}

// Profile is a remote user with follow relations.
type Profile struct {
	Author
	Followers []Author
	Following []Author
}

// extensionTypes maps image extensions to MIME types when sniffing is inconclusive.
var extensionTypes = map[string]string{
	".png":  "image/png",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// LoadAttachment reads an image file into memory and detects its content type.
func LoadAttachment(path string) (Attachment, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Attachment{}, err
	}
	if fi.IsDir() {
		return Attachment{}, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Name:        filepath.Base(path),
		ContentType: DetectContentType(path, data),
		Data:        data,
	}, nil
}

// LoadAttachments loads every path in order.
func LoadAttachments(paths []string) ([]Attachment, error) {
	attachments := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := LoadAttachment(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load attachment %s: %w", p, err)
		}
		attachments = append(attachments, a)
	}
	return attachments, nil
}

// DetectContentType sniffs the first bytes of data, falling back to the file extension.
func DetectContentType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	ct = strings.Split(ct, ";")[0]
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return byExt
	}
	return "application/octet-stream"
}
