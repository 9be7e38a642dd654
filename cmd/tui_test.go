package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xolan/logpost/internal/config"
)

func TestRunTUI_ConfigError(t *testing.T) {
	env := testDeps(t)
	deps.Paths = func() (config.Config, config.Paths, error) {
		return config.Config{}, config.Paths{}, errors.New("permission denied")
	}

	runTUI(context.Background())

	if env.exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", env.exitCode)
	}
	if !strings.Contains(env.stderr.String(), "Details: permission denied") {
		t.Errorf("unexpected stderr: %s", env.stderr.String())
	}
}
