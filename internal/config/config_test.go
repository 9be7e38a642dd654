package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xolan/logpost/internal/osutil"
)

// Helper to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return tmpFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, expected %q", cfg.Timezone, "Local")
	}
	if cfg.Schedule.At != "23:50" {
		t.Errorf("Schedule.At = %q, expected %q", cfg.Schedule.At, "23:50")
	}
	if !cfg.Schedule.CatchUp {
		t.Error("Schedule.CatchUp should default to true")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, expected info/text", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `timezone = "Europe/London"
theme = "nord"
store_path = "data/tasks.json"

[schedule]
at = "21:30"
catch_up = false

[log]
level = "DEBUG"
format = "json"

[http]
timeout = "45s"
`
	cfg, err := Load(createTempConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Theme != "nord" {
		t.Errorf("Theme = %q", cfg.Theme)
	}
	if cfg.Schedule.At != "21:30" || cfg.Schedule.CatchUp {
		t.Errorf("Schedule = %+v", cfg.Schedule)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, expected normalized %q", cfg.Log.Level, "debug")
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("HTTP.Timeout = %v, expected 45s", cfg.HTTP.Timeout)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, `theme = "nord"`))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Schedule.At != "23:50" || !cfg.Schedule.CatchUp {
		t.Errorf("Schedule = %+v, expected defaults", cfg.Schedule)
	}
	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, expected default", cfg.Timezone)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, ""))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load(empty) = %+v, expected defaults", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed string", `timezone = "Local`},
		{"not toml", `this is not valid TOML at all`},
		{"missing quotes", `timezone = Local`},
		{"unclosed table", "[schedule\nat = \"23:50\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() should return error for invalid TOML")
			}
			if !strings.Contains(err.Error(), "failed to parse config file") {
				t.Errorf("Error should mention parsing failure, got: %v", err)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"bad timezone", `timezone = "Mars/Olympus"`, "invalid timezone"},
		{"bad schedule hour", "[schedule]\nat = \"24:10\"", "HH:MM"},
		{"bad schedule format", "[schedule]\nat = \"11pm\"", "HH:MM"},
		{"bad log level", "[log]\nlevel = \"loud\"", "log"},
		{"bad log format", "[log]\nformat = \"xml\"", "log"},
		{"negative timeout", "[http]\ntimeout = \"-5s\"", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() should return a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Error should contain %q, got: %v", tt.wantSub, err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("LoadOrDefault() unexpected error: %v", err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("LoadOrDefault() = %+v, expected defaults", cfg)
		}
	})

	t.Run("existing valid file", func(t *testing.T) {
		cfg, err := LoadOrDefault(createTempConfigFile(t, `timezone = "UTC"`))
		if err != nil {
			t.Fatalf("LoadOrDefault() unexpected error: %v", err)
		}
		if cfg.Timezone != "UTC" {
			t.Errorf("Timezone = %q, expected UTC", cfg.Timezone)
		}
	})

	t.Run("existing invalid file", func(t *testing.T) {
		if _, err := LoadOrDefault(createTempConfigFile(t, `timezone = "Nowhere/Land"`)); err == nil {
			t.Error("LoadOrDefault() should surface validation errors")
		}
	})
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Location() != time.Local {
		t.Error("Location() for Local should be time.Local")
	}

	cfg.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Errorf("Location() = %v, expected UTC", cfg.Location())
	}

	cfg.Timezone = "bogus"
	if cfg.Location() != time.Local {
		t.Error("Location() for an invalid zone should fall back to time.Local")
	}
}

func TestResolvePaths(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "home", "u", ".config", "logpost")

	cfg := DefaultConfig()
	p := cfg.ResolvePaths(dir)
	if p.Store != filepath.Join(dir, StoreFile) {
		t.Errorf("Store = %q", p.Store)
	}
	if p.Posting != filepath.Join(dir, PostingFile) {
		t.Errorf("Posting = %q", p.Posting)
	}
	if p.Generation != filepath.Join(dir, GenerationFile) {
		t.Errorf("Generation = %q", p.Generation)
	}
	if p.Config != filepath.Join(dir, ConfigFile) {
		t.Errorf("Config = %q", p.Config)
	}

	abs := filepath.Join(string(filepath.Separator), "srv", "tasks.json")
	cfg.StorePath = abs
	cfg.PostingConfig = "secrets/twitter.json"
	p = cfg.ResolvePaths(dir)
	if p.Store != abs {
		t.Errorf("absolute override: Store = %q, expected %q", p.Store, abs)
	}
	if p.Posting != filepath.Join(dir, "secrets", "twitter.json") {
		t.Errorf("relative override: Posting = %q", p.Posting)
	}
}

type fakeProvider struct {
	dir string
	err error
}

func (f fakeProvider) UserConfigDir() (string, error) { return f.dir, f.err }

func (f fakeProvider) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (f fakeProvider) Getenv(string) string { return "" }

func TestGetConfigPath(t *testing.T) {
	base := t.TempDir()
	osutil.SetProvider(fakeProvider{dir: base})
	defer osutil.ResetProvider()

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error: %v", err)
	}
	if path != filepath.Join(base, AppName, ConfigFile) {
		t.Errorf("GetConfigPath() = %q", path)
	}
}

func TestDefaultPaths_UserConfigDirError(t *testing.T) {
	osutil.SetProvider(fakeProvider{err: errors.New("permission denied")})
	defer osutil.ResetProvider()

	if _, _, err := DefaultPaths(); err == nil {
		t.Error("DefaultPaths() should fail when the config dir is unavailable")
	}
}

func TestDefaultPaths_LoadsConfigFile(t *testing.T) {
	base := t.TempDir()
	osutil.SetProvider(fakeProvider{dir: base})
	defer osutil.ResetProvider()

	appDir := filepath.Join(base, AppName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, ConfigFile), []byte(`store_path = "elsewhere.json"`), 0644); err != nil {
		t.Fatal(err)
	}

	_, paths, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error: %v", err)
	}
	if paths.Store != filepath.Join(appDir, "elsewhere.json") {
		t.Errorf("Store = %q", paths.Store)
	}
}

func TestGenerateSampleConfig_Loads(t *testing.T) {
	sample := GenerateSampleConfig()
	for _, want := range []string{"timezone", "[schedule]", "at = \"23:50\"", "[log]", "[http]"} {
		if !strings.Contains(sample, want) {
			t.Errorf("sample config missing %q", want)
		}
	}

	cfg, err := Load(createTempConfigFile(t, sample))
	if err != nil {
		t.Fatalf("sample config should load, got %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("sample config = %+v, expected defaults", cfg)
	}
}
