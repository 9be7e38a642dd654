// Package gemini calls the Generative Language API generateContent method.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xolan/logpost/internal/compose"
	"github.com/xolan/logpost/internal/config"
)

// DefaultBaseURL is the public API root
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client generates text with one model and fixed sampling settings
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the service
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("generation API error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("generation API error (%d): %s", e.StatusCode, e.Message)
}

// NewClient returns a client for the settings in cfg. httpClient may be nil.
func NewClient(cfg config.GenerationConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:      cfg.Key(),
		baseURL:     baseURL,
		model:       cfg.ModelName(),
		temperature: cfg.TemperatureValue(),
		maxTokens:   cfg.MaxTokensValue(),
		client:      httpClient,
	}
}

// Factory returns a compose.GeneratorFactory sharing httpClient.
func Factory(httpClient *http.Client) compose.GeneratorFactory {
	return func(cfg config.GenerationConfig) compose.Generator {
		return NewClient(cfg, httpClient)
	}
}

// Generate sends prompt in a single request. The answer is returned as
// decoded; callers extract the text with compose.Normalize.
func (c *Client) Generate(ctx context.Context, prompt string) (compose.Response, error) {
	if c.apiKey == "" {
		return compose.Response{}, fmt.Errorf("generation API key not set")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	})
	if err != nil {
		return compose.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return compose.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error repeats the URL, which carries the key
		return compose.Response{}, fmt.Errorf("HTTP request failed: %w", redact(err, c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return compose.Response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errBody apiErrorBody
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error.Message != "" {
			apiErr.Message = errBody.Error.Message
			apiErr.Status = errBody.Error.Status
		}
		return compose.Response{}, apiErr
	}

	var out compose.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return compose.Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

func redact(err error, secret string) error {
	var ue *url.Error
	if secret == "" || !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: strings.ReplaceAll(ue.URL, url.QueryEscape(secret), "REDACTED"), Err: ue.Err}
}
