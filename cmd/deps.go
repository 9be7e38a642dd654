package cmd

import (
	"io"
	"os"

	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/service"
)

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Exit   func(code int)
	// Paths loads the settings and resolves every file location
	Paths func() (config.Config, config.Paths, error)
	// Options are applied after the defaults to every Services a command builds
	Options []service.Option
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
		Paths:  config.DefaultPaths,
	}
}

// deps is the global dependencies instance used by commands.
// In production, this is DefaultDeps(). Tests can replace it.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}
