// ABOUTME: Submission handler that uploads draft images concurrently and publishes the post.
// ABOUTME: Joins all uploads before publishing and notifies only on full success.
package compose

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
)

// MediaUploader uploads one image and returns its media identifier.
type MediaUploader interface {
	UploadMedia(ctx context.Context, a models.Attachment) (models.MediaID, error)
}

// PostPublisher submits a post referencing uploaded media.
type PostPublisher interface {
	PublishPost(ctx context.Context, post *models.Post) error
}

// IdentitySource resolves the user a post is published as.
type IdentitySource interface {
	CurrentUser(ctx context.Context) (models.Author, error)
}

// Submitter orchestrates one publish action for a draft.
type Submitter struct {
	media    MediaUploader
	posts    PostPublisher
	identity IdentitySource
	notifier notify.Notifier
	language string
	logger   zerolog.Logger
}

// Option configures optional Submitter settings.
type Option func(*Submitter)

// WithLanguage selects the language of the success notification.
func WithLanguage(lang string) Option {
	return func(s *Submitter) {
		s.language = lang
	}
}

// WithLogger sets the logger used for upload and publish events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Submitter) {
		s.logger = l
	}
}

// NewSubmitter creates a submitter. All collaborators are required.
func NewSubmitter(media MediaUploader, posts PostPublisher, identity IdentitySource, notifier notify.Notifier, opts ...Option) (*Submitter, error) {
	if media == nil {
		return nil, fmt.Errorf("media uploader is required")
	}
	if posts == nil {
		return nil, fmt.Errorf("post publisher is required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity source is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	s := &Submitter{
		media:    media,
		posts:    posts,
		identity: identity,
		notifier: notifier,
		language: "en",
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WithNotifier returns a copy of s that reports to n.
func (s *Submitter) WithNotifier(n notify.Notifier) *Submitter {
	c := *s
	c.notifier = n
	return &c
}

// SubmitDraft loads the draft's images from disk and submits it.
func (s *Submitter) SubmitDraft(ctx context.Context, d *models.Draft) error {
	attachments, err := models.LoadAttachments(d.Images)
	if err != nil {
		return err
	}
	return s.Submit(ctx, d.Text, attachments)
}

// Submit uploads every attachment concurrently, then publishes text with the
// collected media ids. The first failure aborts the submission and is returned
// without notifying; media already uploaded is left on the server.
func (s *Submitter) Submit(ctx context.Context, text string, attachments []models.Attachment) error {
	author, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}

	ids, err := s.uploadAll(ctx, attachments)
	if err != nil {
		s.logger.Error().Err(err).Int("attachments", len(attachments)).Msg("upload failed, post not published")
		return err
	}

	post := &models.Post{
		Text:     text,
		MediaIDs: ids,
		Author:   author,
	}
	if err := s.posts.PublishPost(ctx, post); err != nil {
		s.logger.Error().Err(err).Msg("publish failed")
		return fmt.Errorf("publish post: %w", err)
	}
	s.logger.Debug().Str("author", author.String()).Int("media", len(ids)).Msg("post published")

	s.notifier.Notify(models.Notification{
		Severity: models.SeverityInfo,
		Message:  notify.Message(s.language, notify.TweetSent),
	})
	return nil
}

// uploadAll fans out one upload per attachment and joins on all of them.
// ids[i] always belongs to attachments[i].
func (s *Submitter) uploadAll(ctx context.Context, attachments []models.Attachment) ([]models.MediaID, error) {
	ids := make([]models.MediaID, len(attachments))
	if len(attachments) == 0 {
		return ids, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range attachments {
		g.Go(func() error {
			s.logger.Debug().Int("index", i).Str("name", a.Name).Msg("upload started")
			id, err := s.media.UploadMedia(gctx, a)
			if err != nil {
				return fmt.Errorf("upload %s: %w", a.Name, err)
			}
			ids[i] = id
			s.logger.Debug().Int("index", i).Str("media_id", string(id)).Msg("upload finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}
