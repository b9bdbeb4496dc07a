// ABOUTME: OAuth1 client for posting to X (media upload v1.1, tweet creation v2).
// ABOUTME: Resolves the signed-in account through go-twitter's verify_credentials.
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
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"

	"github.com/2389-research/chirp/internal/models"
)

const (
	xUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	xTweetURL  = "https://api.twitter.com/2/tweets"
)

// XCredentials holds the four OAuth1 values for a user-context X app.
type XCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// XClient uploads media and publishes posts to X.
type XClient struct {
	http    *http.Client
	twitter *twitter.Client
}

// NewXClient builds an OAuth1-signed client from creds.
func NewXClient(creds XCredentials) *XClient {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return newXClient(config.Client(context.Background(), token))
}

func newXClient(httpClient *http.Client) *XClient {
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 60 * time.Second
	}
	return &XClient{
		http:    httpClient,
		twitter: twitter.NewClient(httpClient),
	}
}

type xMediaResponse struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
}

type xTweetMedia struct {
	MediaIDs []models.MediaID `json:"media_ids"`
}

type xTweetRequest struct {
	Text  string       `json:"text"`
	Media *xTweetMedia `json:"media,omitempty"`
}

type xTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// UploadMedia sends one image as multipart field "media".
func (x *XClient) UploadMedia(ctx context.Context, a models.Attachment) (models.MediaID, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("media", a.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(a.Data); err != nil {
		return "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", xUploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out xMediaResponse
	if err := x.do(req, "POST /1.1/media/upload.json", &out); err != nil {
		return "", err
	}

	switch {
	case out.MediaIDString != "":
		return models.MediaID(out.MediaIDString), nil
	case out.MediaID != 0:
		return models.MediaID(strconv.FormatInt(out.MediaID, 10)), nil
	default:
		return "", errors.New("missing media_id in upload response")
	}
}

// CreateTweet publishes a post and returns the new tweet id.
func (x *XClient) CreateTweet(ctx context.Context, post *models.Post) (string, error) {
	payload := xTweetRequest{Text: post.Text}
	if len(post.MediaIDs) > 0 {
		payload.Media = &xTweetMedia{MediaIDs: post.MediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", xTweetURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out xTweetResponse
	if err := x.do(req, "POST /2/tweets", &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", errors.New("missing tweet id in response")
	}
	return out.Data.ID, nil
}

// PublishPost implements compose.PostPublisher.
func (x *XClient) PublishPost(ctx context.Context, post *models.Post) error {
	_, err := x.CreateTweet(ctx, post)
	return err
}

// CurrentUser returns the account the access token belongs to.
func (x *XClient) CurrentUser(ctx context.Context) (models.Author, error) {
	if err := ctx.Err(); err != nil {
		return models.Author{}, err
	}
	user, _, err := x.twitter.Accounts.VerifyCredentials(&twitter.AccountVerifyParams{
		SkipStatus: twitter.Bool(true),
	})
	if err != nil {
		return models.Author{}, fmt.Errorf("verify credentials: %w", err)
	}
	return models.Author{ID: user.IDStr, Name: user.ScreenName}, nil
}

func (x *XClient) do(req *http.Request, op string, out any) error {
	resp, err := x.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return errors.New(diagnoseHTTPError(resp, respBody, op))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// diagnoseHTTPError renders an X error body (v2 problem, v1.1 errors list, or raw text).
func diagnoseHTTPError(resp *http.Response, body []byte, op string) string {
	var msg string

	var v2 struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	var v1 struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}

	switch {
	case json.Unmarshal(body, &v2) == nil && (v2.Title != "" || v2.Detail != ""):
		msg = fmt.Sprintf("%s failed (%d): %s: %s", op, resp.StatusCode, v2.Title, v2.Detail)
	case json.Unmarshal(body, &v1) == nil && len(v1.Errors) > 0:
		parts := make([]string, 0, len(v1.Errors))
		for _, e := range v1.Errors {
			parts = append(parts, fmt.Sprintf("code %d: %s", e.Code, e.Message))
		}
		msg = fmt.Sprintf("%s failed (%d): %s", op, resp.StatusCode, strings.Join(parts, "; "))
	default:
		msg = fmt.Sprintf("%s failed (%d): %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if level := resp.Header.Get("X-Access-Level"); level != "" {
		msg += " [access level: " + level + "]"
	}
	return msg
}
