package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// GenerateSampleConfig returns a commented config.toml with every default spelled out.
func GenerateSampleConfig() string {
	def := DefaultConfig()
	return fmt.Sprintf(`# logpost configuration file

# Timezone used for entry dates and the daily trigger: IANA name or "Local"
timezone = %q

# Dashboard colour theme
theme = %q

# File locations; empty means the default name next to this file
store_path = ""
posting_config = ""
generation_config = ""

[schedule]
# Local time of the daily rollup (HH:MM, 24-hour clock)
at = %q
# Run once at start when today's time has already passed
catch_up = %t

[log]
# debug, info, warn or error
level = %q
# text or json
format = %q

[http]
# Per-request timeout for the generation and posting APIs; "0s" disables it
timeout = "0s"
`, def.Timezone, def.Theme, def.Schedule.At, def.Schedule.CatchUp, def.Log.Level, def.Log.Format)
}

// SamplePosting returns a posting credentials template.
func SamplePosting() PostingConfig {
	return PostingConfig{
		ConsumerKey:       "YOUR_CONSUMER_KEY",
		ConsumerSecret:    "YOUR_CONSUMER_SECRET",
		AccessToken:       "YOUR_ACCESS_TOKEN",
		AccessTokenSecret: "YOUR_ACCESS_TOKEN_SECRET",
	}
}

// SampleGeneration returns a generation settings template.
func SampleGeneration() GenerationConfig {
	temperature := DefaultTemperature
	maxTokens := DefaultMaxTokens
	return GenerationConfig{
		APIKey:      "YOUR_GEMMA_API_KEY",
		Model:       DefaultModel,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
}

// WriteSamples writes every missing config file under paths and returns
// the ones it created. Existing files are left alone.
func WriteSamples(paths Paths) ([]string, error) {
	posting, err := json.MarshalIndent(SamplePosting(), "", "  ")
	if err != nil {
		return nil, err
	}
	generation, err := json.MarshalIndent(SampleGeneration(), "", "  ")
	if err != nil {
		return nil, err
	}

	files := []struct {
		path string
		data []byte
		perm os.FileMode
	}{
		{paths.Config, []byte(GenerateSampleConfig()), 0644},
		{paths.Posting, append(posting, '\n'), 0600},
		{paths.Generation, append(generation, '\n'), 0600},
	}

	var created []string
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return created, err
		}
		if err := os.WriteFile(f.path, f.data, f.perm); err != nil {
			return created, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		created = append(created, f.path)
	}
	return created, nil
}
