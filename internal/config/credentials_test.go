package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJSONFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadPosting(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "all credentials",
			content: `{"consumer_key":"ck","consumer_secret":"cs","access_token":"at","access_token_secret":"ats"}`,
		},
		{
			name:    "missing access token secret",
			content: `{"consumer_key":"ck","consumer_secret":"cs","access_token":"at"}`,
			wantErr: ErrConfigInvalid,
		},
		{
			name:    "placeholder left in",
			content: `{"consumer_key":"YOUR_CONSUMER_KEY","consumer_secret":"cs","access_token":"at","access_token_secret":"ats"}`,
			wantErr: ErrConfigInvalid,
		},
		{
			name:    "malformed json",
			content: `{"consumer_key": "ck",`,
			wantErr: ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadPosting(writeJSONFile(t, "posting.json", tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadPosting() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadPosting() unexpected error: %v", err)
			}
			if cfg.ConsumerKey != "ck" || cfg.AccessTokenSecret != "ats" {
				t.Errorf("unexpected config: %+v", cfg)
			}
		})
	}
}

func TestLoadPosting_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting.json")
	_, err := LoadPosting(path)
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("LoadPosting() error = %v, want ErrConfigMissing", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the path, got %v", err)
	}
}

func TestLoadGeneration_Defaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := LoadGeneration(writeJSONFile(t, "generation.json", `{}`))
	if err != nil {
		t.Fatalf("LoadGeneration() unexpected error: %v", err)
	}
	if cfg.Key() != "" {
		t.Errorf("Key() = %q, expected empty", cfg.Key())
	}
	if cfg.ModelName() != DefaultModel {
		t.Errorf("ModelName() = %q", cfg.ModelName())
	}
	if cfg.TemperatureValue() != 0.7 {
		t.Errorf("TemperatureValue() = %v", cfg.TemperatureValue())
	}
	if cfg.MaxTokensValue() != 1000 {
		t.Errorf("MaxTokensValue() = %v", cfg.MaxTokensValue())
	}
}

func TestLoadGeneration_ExplicitValues(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := LoadGeneration(writeJSONFile(t, "generation.json",
		`{"gemma_api_key":"k-123","model":"gemma-3-27b-it","temperature":0,"max_tokens":120}`))
	if err != nil {
		t.Fatalf("LoadGeneration() unexpected error: %v", err)
	}
	if cfg.Key() != "k-123" {
		t.Errorf("Key() = %q", cfg.Key())
	}
	if cfg.ModelName() != "gemma-3-27b-it" {
		t.Errorf("ModelName() = %q", cfg.ModelName())
	}
	if cfg.TemperatureValue() != 0 {
		t.Errorf("explicit zero temperature should be kept, got %v", cfg.TemperatureValue())
	}
	if cfg.MaxTokensValue() != 120 {
		t.Errorf("MaxTokensValue() = %v", cfg.MaxTokensValue())
	}
}

func TestLoadGeneration_KeySources(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     string
		wantKey string
	}{
		{"legacy field", `{"gemini_api_key":"legacy"}`, "", "legacy"},
		{"primary wins", `{"gemma_api_key":"primary","gemini_api_key":"legacy"}`, "", "primary"},
		{"placeholder ignored", `{"gemma_api_key":"YOUR_GEMMA_API_KEY"}`, "", ""},
		{"env overrides", `{"gemma_api_key":"file"}`, "from-env", "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(APIKeyEnv, tt.env)
			cfg, err := LoadGeneration(writeJSONFile(t, "generation.json", tt.content))
			if err != nil {
				t.Fatalf("LoadGeneration() unexpected error: %v", err)
			}
			if cfg.Key() != tt.wantKey {
				t.Errorf("Key() = %q, want %q", cfg.Key(), tt.wantKey)
			}
		})
	}
}

func TestLoadGeneration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"temperature too high", `{"temperature": 3.5}`},
		{"negative temperature", `{"temperature": -1}`},
		{"zero max tokens", `{"max_tokens": 0}`},
		{"wrong type", `{"max_tokens": "lots"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGeneration(writeJSONFile(t, "generation.json", tt.content))
			if !errors.Is(err, ErrConfigInvalid) {
				t.Errorf("LoadGeneration() error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestLoadGeneration_Missing(t *testing.T) {
	_, err := LoadGeneration(filepath.Join(t.TempDir(), "generation.json"))
	if !errors.Is(err, ErrConfigMissing) {
		t.Errorf("LoadGeneration() error = %v, want ErrConfigMissing", err)
	}
}

func TestWriteSamples(t *testing.T) {
	dir := t.TempDir()
	paths := DefaultConfig().ResolvePaths(dir)

	existing := `{"consumer_key":"keep-me"}`
	if err := os.WriteFile(paths.Posting, []byte(existing), 0600); err != nil {
		t.Fatal(err)
	}

	created, err := WriteSamples(paths)
	if err != nil {
		t.Fatalf("WriteSamples() error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("WriteSamples() created %v, expected config and generation only", created)
	}

	data, _ := os.ReadFile(paths.Posting)
	if string(data) != existing {
		t.Error("WriteSamples() overwrote an existing file")
	}

	if _, err := Load(paths.Config); err != nil {
		t.Errorf("sample config.toml should load: %v", err)
	}

	t.Setenv(APIKeyEnv, "")
	gen, err := LoadGeneration(paths.Generation)
	if err != nil {
		t.Fatalf("sample generation.json should load: %v", err)
	}
	if gen.Key() != "" {
		t.Error("sample generation key should count as unset")
	}

	if _, err := LoadPosting(writeJSONFile(t, "p.json", mustReadSamplePosting(t))); !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("sample posting template should be rejected until filled in, got %v", err)
	}
}

func mustReadSamplePosting(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	paths := DefaultConfig().ResolvePaths(dir)
	if _, err := WriteSamples(paths); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(paths.Posting)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
