// Package twitter publishes posts through the X/Twitter v2 API.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/xolan/logpost/internal/config"
)

// DefaultBaseURL is the public API root
const DefaultBaseURL = "https://api.twitter.com"

// PostID identifies a published post
type PostID string

// PublishError is any failure to publish: transport, non-2xx status,
// undecodable answer or a missing post id. Status is 0 when no HTTP
// response was received.
type PublishError struct {
	Status int
	Detail string
	Err    error
}

func (e *PublishError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("publish failed: %s", e.Detail)
	}
	return fmt.Sprintf("publish failed (%d): %s", e.Status, e.Detail)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Client posts as the account the OAuth 1.0a credentials belong to
type Client struct {
	baseURL string
	http    *http.Client
}

type createRequest struct {
	Text string `json:"text"`
}

type createResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient returns a client that signs every request with cfg's
// credentials. base supplies transport settings such as the timeout and may be nil.
func NewClient(cfg config.PostingConfig, base *http.Client) *Client {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}

	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)

	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := oauthConfig.Client(ctx, token)
	if base != nil {
		httpClient.Timeout = base.Timeout
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Publish creates one post with text exactly as given.
func (c *Client) Publish(ctx context.Context, text string) (PostID, error) {
	body, err := json.Marshal(createRequest{Text: text})
	if err != nil {
		return "", &PublishError{Detail: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", &PublishError{Detail: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &PublishError{Detail: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &PublishError{Status: resp.StatusCode, Detail: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &PublishError{Status: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	var created createResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", &PublishError{Status: resp.StatusCode, Detail: "failed to decode response", Err: err}
	}
	if created.Data.ID == "" {
		return "", &PublishError{Status: resp.StatusCode, Detail: "response carried no post id"}
	}
	return PostID(created.Data.ID), nil
}

func errorDetail(body []byte) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Detail != "":
			return e.Detail
		case len(e.Errors) > 0 && e.Errors[0].Message != "":
			return e.Errors[0].Message
		case e.Title != "":
			return e.Title
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "empty response"
}
