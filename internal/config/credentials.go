package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Errors returned while loading the per-run JSON configuration
var (
	ErrConfigMissing = errors.New("configuration file not found")
	ErrConfigInvalid = errors.New("configuration file is invalid")
)

// APIKeyEnv overrides the generation API key from the environment
const APIKeyEnv = "LOGPOST_GEMMA_API_KEY"

// Generation defaults applied when a field is absent
const (
	DefaultModel       = "gemma-2-9b-it"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// placeholderPrefix marks template values written by `config init`
const placeholderPrefix = "YOUR_"

// PostingConfig holds the OAuth 1.0a credentials of the posting account
type PostingConfig struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	APIBaseURL        string `json:"api_base_url,omitempty"`
}

// Validate requires all four credentials and rejects template placeholders.
func (c PostingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ConsumerKey, validation.Required, validation.By(notPlaceholder)),
		validation.Field(&c.ConsumerSecret, validation.Required, validation.By(notPlaceholder)),
		validation.Field(&c.AccessToken, validation.Required, validation.By(notPlaceholder)),
		validation.Field(&c.AccessTokenSecret, validation.Required, validation.By(notPlaceholder)),
	)
}

// GenerationConfig holds the text-generation service settings.
// The API key is optional: without it only the fallback template is used.
type GenerationConfig struct {
	APIKey       string   `json:"gemma_api_key,omitempty"`
	LegacyAPIKey string   `json:"gemini_api_key,omitempty"`
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	APIBaseURL   string   `json:"api_base_url,omitempty"`
}

// Validate checks the optional generation parameters when present.
func (c GenerationConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxTokens, validation.Min(1)),
	)
}

// Key returns the usable API key, or "" when none is configured.
func (c GenerationConfig) Key() string {
	for _, k := range []string{c.APIKey, c.LegacyAPIKey} {
		k = strings.TrimSpace(k)
		if k != "" && !strings.HasPrefix(k, placeholderPrefix) {
			return k
		}
	}
	return ""
}

// ModelName returns the configured model or DefaultModel.
func (c GenerationConfig) ModelName() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

// TemperatureValue returns the configured temperature or DefaultTemperature.
func (c GenerationConfig) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// MaxTokensValue returns the configured output token cap or DefaultMaxTokens.
func (c GenerationConfig) MaxTokensValue() int {
	if c.MaxTokens == nil {
		return DefaultMaxTokens
	}
	return *c.MaxTokens
}

// LoadPosting reads and validates the posting credentials at path.
func LoadPosting(path string) (PostingConfig, error) {
	var cfg PostingConfig
	if err := readJSON(path, &cfg); err != nil {
		return PostingConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return PostingConfig{}, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return cfg, nil
}

// LoadGeneration reads and validates the generation settings at path.
// $LOGPOST_GEMMA_API_KEY, when set, replaces the key from the file.
func LoadGeneration(path string) (GenerationConfig, error) {
	var cfg GenerationConfig
	if err := readJSON(path, &cfg); err != nil {
		return GenerationConfig{}, err
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return GenerationConfig{}, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return cfg, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return nil
}

func notPlaceholder(value interface{}) error {
	s, _ := value.(string)
	if strings.HasPrefix(strings.TrimSpace(s), placeholderPrefix) {
		return errors.New("still set to the template placeholder")
	}
	return nil
}
