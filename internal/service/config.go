package service

import (
	"errors"
	"fmt"
	"os"

	"github.com/xolan/logpost/internal/config"
)

// ConfigService provides operations for managing configuration
type ConfigService struct {
	paths  config.Paths
	config config.Config
}

// NewConfigService creates a new ConfigService
func NewConfigService(paths config.Paths, cfg config.Config) *ConfigService {
	return &ConfigService{
		paths:  paths,
		config: cfg,
	}
}

// Get returns the current configuration
func (s *ConfigService) Get() config.Config {
	return s.config
}

// GetPath returns the path to the config file
func (s *ConfigService) GetPath() string {
	return s.paths.Config
}

// Paths returns every resolved file location
func (s *ConfigService) Paths() config.Paths {
	return s.paths
}

// Exists checks if the config file exists
func (s *ConfigService) Exists() bool {
	_, err := os.Stat(s.paths.Config)
	return err == nil
}

// Update validates cfg, writes it to the config file and makes it current
func (s *ConfigService) Update(cfg config.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(s.paths.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.writeConfig(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	s.config = cfg
	return nil
}

// Init writes sample files for every missing configuration file and
// returns the paths it created. Existing files are never overwritten.
func (s *ConfigService) Init() ([]string, error) {
	if err := os.MkdirAll(s.paths.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return config.WriteSamples(s.paths)
}

// Check loads and validates each configuration file the rollup depends on.
func (s *ConfigService) Check() []CheckResult {
	var results []CheckResult

	settings := CheckResult{Name: "settings", Path: s.paths.Config, OK: true, Detail: "using defaults (no file)"}
	if s.Exists() {
		if _, err := config.Load(s.paths.Config); err != nil {
			settings.OK, settings.Detail = false, err.Error()
		} else {
			settings.Detail = "valid"
		}
	}
	results = append(results, settings)

	posting := CheckResult{Name: "posting credentials", Path: s.paths.Posting, OK: true, Detail: "valid"}
	if _, err := config.LoadPosting(s.paths.Posting); err != nil {
		posting.OK, posting.Detail = false, checkDetail(err)
	}
	results = append(results, posting)

	generation := CheckResult{Name: "generation settings", Path: s.paths.Generation, OK: true}
	gen, err := config.LoadGeneration(s.paths.Generation)
	switch {
	case err != nil:
		generation.OK, generation.Detail = false, checkDetail(err)
	case gen.Key() == "":
		generation.Detail = "no API key, the fallback template will be used"
	default:
		generation.Detail = fmt.Sprintf("valid (model %s)", gen.ModelName())
	}
	results = append(results, generation)

	return results
}

// Reload reloads the configuration from disk
func (s *ConfigService) Reload() error {
	cfg, err := config.LoadOrDefault(s.paths.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s.config = cfg
	return nil
}

// writeConfig writes cfg to the config file in TOML format
func (s *ConfigService) writeConfig(cfg config.Config) error {
	content := fmt.Sprintf(`# logpost configuration file

timezone = %q
theme = %q
store_path = %q
posting_config = %q
generation_config = %q

[schedule]
at = %q
catch_up = %t

[log]
level = %q
format = %q

[http]
timeout = %q
`, cfg.Timezone, cfg.Theme, cfg.StorePath, cfg.PostingConfig, cfg.GenerationConfig,
		cfg.Schedule.At, cfg.Schedule.CatchUp, cfg.Log.Level, cfg.Log.Format, cfg.HTTP.Timeout.String())

	return os.WriteFile(s.paths.Config, []byte(content), 0644)
}

func checkDetail(err error) string {
	if errors.Is(err, config.ErrConfigMissing) {
		return "file not found (run 'logpost config init')"
	}
	return err.Error()
}
