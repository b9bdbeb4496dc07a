// ABOUTME: HTTP client for the tweet API (media upload, tweets, likes, follows, profile).
// ABOUTME: Implements the uploader, publisher, and identity contracts used by the submitter.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/chirp/internal/models"
)

// RemoteClient talks to the tweet API.
type RemoteClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewRemoteClient creates a remote client with the given base URL and API key.
func NewRemoteClient(apiURL, apiKey string) *RemoteClient {
	return &RemoteClient{
		apiURL: NormalizeAPIURL(apiURL),
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NormalizeAPIURL strips trailing slashes and a trailing /api segment.
func NormalizeAPIURL(apiURL string) string {
	apiURL = strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(apiURL, "/api")
}

// APIError is a failure reported by the tweet API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("remote API returned %d: %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("remote API returned %d: %s", e.Status, e.Message)
}

// IsAPIError reports whether err is an APIError with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// remoteErrorResponse is the error envelope returned by the API. Most
// handlers spell the message key "error_massage".
type remoteErrorResponse struct {
	Result       bool   `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	ErrorMassage string `json:"error_massage"`
}

func (e remoteErrorResponse) message() string {
	if e.ErrorMessage != "" {
		return e.ErrorMessage
	}
	return e.ErrorMassage
}

// remoteMediaResponse is returned by POST /api/media.
type remoteMediaResponse struct {
	Result  bool            `json:"result"`
	MediaID json.RawMessage `json:"media_id"`
}

// remoteTweetPayload is the JSON body sent to POST /api/tweets.
type remoteTweetPayload struct {
	TweetData     string           `json:"tweet_data"`
	TweetMediaIDs []models.MediaID `json:"tweet_media_ids"`
	Author        string           `json:"author,omitempty"`
}

// remoteTweetCreated is returned by POST /api/tweets.
type remoteTweetCreated struct {
	Result  bool            `json:"result"`
	TweetID json.RawMessage `json:"tweet_id"`
}

// remoteUser maps a user reference.
type remoteUser struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// remoteLike maps a like entry.
type remoteLike struct {
	UserID json.RawMessage `json:"user_id"`
	Name   string          `json:"name"`
}

// remoteTweet maps a single tweet from the feed.
type remoteTweet struct {
	ID          json.RawMessage `json:"id"`
	Content     string          `json:"content"`
	Attachments []string        `json:"attachments"`
	Author      remoteUser      `json:"author"`
	Likes       []remoteLike    `json:"likes"`
}

// remoteFeedResponse is the envelope from GET /api/tweets.
type remoteFeedResponse struct {
	Result bool          `json:"result"`
	Tweets []remoteTweet `json:"tweets"`
}

// remoteProfileResponse is the envelope from GET /api/users/me and /api/users/{id}.
type remoteProfileResponse struct {
	Result bool `json:"result"`
	User   struct {
		remoteUser
		Followers []remoteUser `json:"followers"`
		Following []remoteUser `json:"following"`
	} `json:"user"`
}

// FeedOptions configures feed pagination and filtering.
type FeedOptions struct {
	Limit  int
	Offset int
	Author string // client-side filter on author name
}

// UploadMedia sends one image as multipart field "file" and returns its media id.
func (r *RemoteClient) UploadMedia(ctx context.Context, a models.Attachment) (models.MediaID, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, a.Name))
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(a.Data); err != nil {
		return "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := r.newRequest(ctx, "POST", "/api/media", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out remoteMediaResponse
	if err := r.do(req, &out); err != nil {
		return "", err
	}
	id := rawID(out.MediaID)
	if id == "" {
		return "", fmt.Errorf("missing media_id in upload response")
	}
	return models.MediaID(id), nil
}

// CreateTweet publishes a post and returns the server-assigned tweet id.
func (r *RemoteClient) CreateTweet(ctx context.Context, post *models.Post) (string, error) {
	ids := post.MediaIDs
	if ids == nil {
		ids = []models.MediaID{}
	}
	payload := remoteTweetPayload{
		TweetData:     post.Text,
		TweetMediaIDs: ids,
		Author:        post.Author.Name,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tweet: %w", err)
	}

	req, err := r.newRequest(ctx, "POST", "/api/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out remoteTweetCreated
	if err := r.do(req, &out); err != nil {
		return "", err
	}
	return rawID(out.TweetID), nil
}

// PublishPost implements compose.PostPublisher.
func (r *RemoteClient) PublishPost(ctx context.Context, post *models.Post) error {
	_, err := r.CreateTweet(ctx, post)
	return err
}

// ReadTweets fetches the feed. The API returns the whole feed, so the
// author filter, offset and limit are applied here in that order.
func (r *RemoteClient) ReadTweets(ctx context.Context, opts FeedOptions) ([]models.Tweet, error) {
	req, err := r.newRequest(ctx, "GET", "/api/tweets", nil)
	if err != nil {
		return nil, err
	}

	var feed remoteFeedResponse
	if err := r.do(req, &feed); err != nil {
		return nil, err
	}

	tweets := make([]models.Tweet, 0, len(feed.Tweets))
	for _, rt := range feed.Tweets {
		if opts.Author != "" && rt.Author.Name != opts.Author {
			continue
		}
		t := models.Tweet{
			ID:          rawID(rt.ID),
			Content:     rt.Content,
			Attachments: rt.Attachments,
			Author:      rt.Author.author(),
		}
		for _, l := range rt.Likes {
			t.Likes = append(t.Likes, models.Author{ID: rawID(l.UserID), Name: l.Name})
		}
		tweets = append(tweets, t)
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(tweets) {
			return []models.Tweet{}, nil
		}
		tweets = tweets[opts.Offset:]
	}
	if opts.Limit > 0 && len(tweets) > opts.Limit {
		tweets = tweets[:opts.Limit]
	}
	return tweets, nil
}

// DeleteTweet removes one of the caller's tweets.
func (r *RemoteClient) DeleteTweet(ctx context.Context, tweetID string) error {
	return r.simple(ctx, "DELETE", "/api/tweets/%s", tweetID)
}

// Like adds the caller's like to a tweet.
func (r *RemoteClient) Like(ctx context.Context, tweetID string) error {
	return r.simple(ctx, "POST", "/api/tweets/%s/likes", tweetID)
}

// Unlike removes the caller's like from a tweet.
func (r *RemoteClient) Unlike(ctx context.Context, tweetID string) error {
	return r.simple(ctx, "DELETE", "/api/tweets/%s/likes", tweetID)
}

// Follow starts following a user.
func (r *RemoteClient) Follow(ctx context.Context, userID string) error {
	return r.simple(ctx, "POST", "/api/users/%s/follow", userID)
}

// Unfollow stops following a user.
func (r *RemoteClient) Unfollow(ctx context.Context, userID string) error {
	return r.simple(ctx, "DELETE", "/api/users/%s/follow", userID)
}

// Me fetches the profile bound to the API key.
func (r *RemoteClient) Me(ctx context.Context) (*models.Profile, error) {
	return r.profile(ctx, "/api/users/me")
}

// User fetches a profile by id.
func (r *RemoteClient) User(ctx context.Context, userID string) (*models.Profile, error) {
	path, err := idPath("/api/users/%s", userID)
	if err != nil {
		return nil, err
	}
	return r.profile(ctx, path)
}

// idPath fills a path template with a tweet or user id. The API keys both
// by integer, so anything else is rejected before a request is made.
func idPath(format, id string) (string, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("invalid id %q: must be a positive integer", id)
	}
	return fmt.Sprintf(format, id), nil
}

// CurrentUser implements compose.IdentitySource using the API key's profile.
func (r *RemoteClient) CurrentUser(ctx context.Context) (models.Author, error) {
	p, err := r.Me(ctx)
	if err != nil {
		return models.Author{}, err
	}
	return p.Author, nil
}

func (r *RemoteClient) profile(ctx context.Context, path string) (*models.Profile, error) {
	req, err := r.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var out remoteProfileResponse
	if err := r.do(req, &out); err != nil {
		return nil, err
	}

	p := &models.Profile{Author: out.User.author()}
	for _, f := range out.User.Followers {
		p.Followers = append(p.Followers, f.author())
	}
	for _, f := range out.User.Following {
		p.Following = append(p.Following, f.author())
	}
	return p, nil
}

func (r *RemoteClient) simple(ctx context.Context, method, format, id string) error {
	path, err := idPath(format, id)
	if err != nil {
		return err
	}
	req, err := r.newRequest(ctx, method, path, nil)
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *RemoteClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", r.apiKey)
	return req, nil
}

// do executes req and decodes a successful JSON response into out when non-nil.
func (r *RemoteClient) do(req *http.Request, out any) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var envelope remoteErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.ErrorType != "" {
			apiErr.Type = envelope.ErrorType
			if msg := envelope.message(); msg != "" {
				apiErr.Message = msg
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (u remoteUser) author() models.Author {
	return models.Author{ID: rawID(u.ID), Name: u.Name}
}

// rawID renders a JSON number or string id as a plain string.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
