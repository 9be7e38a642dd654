package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/xolan/logpost/internal/osutil"
)

const (
	// AppName is the application name used for the config directory
	AppName = "logpost"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// StoreFile is the default name of the task store
	StoreFile = "tasks.json"
	// PostingFile is the default name of the posting credentials file
	PostingFile = "posting.json"
	// GenerationFile is the default name of the text-generation settings file
	GenerationFile = "generation.json"
)

// Log levels and formats accepted in the [log] table
var (
	LogLevels  = []interface{}{"debug", "info", "warn", "error"}
	LogFormats = []interface{}{"text", "json"}
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Config represents the application settings stored in config.toml
type Config struct {
	// Timezone used to derive entry dates and the daily trigger (IANA name or "Local")
	Timezone string `toml:"timezone"`
	// Theme is the dashboard colour theme
	Theme string `toml:"theme"`
	// StorePath overrides the task store location
	StorePath string `toml:"store_path"`
	// PostingConfig overrides the posting credentials location
	PostingConfig string `toml:"posting_config"`
	// GenerationConfig overrides the text-generation settings location
	GenerationConfig string `toml:"generation_config"`

	Schedule ScheduleConfig `toml:"schedule"`
	Log      LogConfig      `toml:"log"`
	HTTP     HTTPConfig     `toml:"http"`
}

// ScheduleConfig controls the daily rollup trigger
type ScheduleConfig struct {
	// At is the local wall-clock time of the daily run, HH:MM
	At string `toml:"at"`
	// CatchUp runs the rollup at start when today's trigger time has already passed
	CatchUp bool `toml:"catch_up"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// HTTPConfig controls outbound API calls
type HTTPConfig struct {
	// Timeout bounds each outbound request; zero leaves it to the context
	Timeout time.Duration `toml:"timeout"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Timezone: "Local",
		Theme:    "dracula",
		Schedule: ScheduleConfig{
			At:      "23:50",
			CatchUp: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetConfigPath returns the path to config.toml, creating its directory.
func GetConfigPath() (string, error) {
	return osutil.AppFile(AppName, ConfigFile)
}

// Load reads and validates the config file at path.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config file, or returns DefaultConfig when it doesn't exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return Load(path)
}

// Normalize lower-cases enumerated values and fills blanks with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()

	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	c.Schedule.At = strings.TrimSpace(c.Schedule.At)
	if c.Schedule.At == "" {
		c.Schedule.At = def.Schedule.At
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Timezone, validation.Required, validation.By(validTimezone)),
	); err != nil {
		return err
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http: timeout cannot be negative")
	}
	return nil
}

// Validate checks the schedule table.
func (c ScheduleConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.At, validation.Required,
			validation.Match(clockPattern).Error("must be a 24-hour HH:MM time")),
	)
}

// Validate checks the log table.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In(LogLevels...)),
		validation.Field(&c.Format, validation.Required, validation.In(LogFormats...)),
	)
}

func validTimezone(value interface{}) error {
	name, _ := value.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("invalid timezone %q", name)
	}
	return nil
}

// Location returns the configured time zone, falling back to time.Local.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Paths holds the resolved locations of every file the application uses
type Paths struct {
	Dir        string
	Config     string
	Store      string
	Posting    string
	Generation string
}

// ResolvePaths returns absolute file locations.
// Empty overrides use the default file names inside dir; relative
// overrides are taken relative to dir.
func (c Config) ResolvePaths(dir string) Paths {
	resolve := func(override, name string) string {
		if override == "" {
			return filepath.Join(dir, name)
		}
		if filepath.IsAbs(override) {
			return override
		}
		return filepath.Join(dir, override)
	}

	return Paths{
		Dir:        dir,
		Config:     filepath.Join(dir, ConfigFile),
		Store:      resolve(c.StorePath, StoreFile),
		Posting:    resolve(c.PostingConfig, PostingFile),
		Generation: resolve(c.GenerationConfig, GenerationFile),
	}
}

// DefaultPaths loads config.toml from the application directory and resolves every path.
func DefaultPaths() (Config, Paths, error) {
	dir, err := osutil.AppDir(AppName)
	if err != nil {
		return Config{}, Paths{}, err
	}
	cfg, err := LoadOrDefault(filepath.Join(dir, ConfigFile))
	if err != nil {
		return Config{}, Paths{}, err
	}
	return cfg, cfg.ResolvePaths(dir), nil
}
