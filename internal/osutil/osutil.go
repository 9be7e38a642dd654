// Package osutil resolves the application directory behind a swappable
// provider so path failures can be exercised in tests.
package osutil

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the application directory when set
const HomeEnv = "LOGPOST_HOME"

// PathProvider abstracts the OS calls used to locate and create the app directory.
type PathProvider interface {
	UserConfigDir() (string, error)
	MkdirAll(path string, perm os.FileMode) error
	Getenv(key string) string
}

// DefaultPathProvider uses real OS functions.
type DefaultPathProvider struct{}

func (DefaultPathProvider) UserConfigDir() (string, error) { return os.UserConfigDir() }

func (DefaultPathProvider) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (DefaultPathProvider) Getenv(key string) string { return os.Getenv(key) }

// Provider is the package-level path provider instance.
// In production, this is DefaultPathProvider. Tests can replace it.
var Provider PathProvider = DefaultPathProvider{}

// SetProvider sets a custom provider (for testing).
func SetProvider(p PathProvider) {
	Provider = p
}

// ResetProvider resets to the default provider.
func ResetProvider() {
	Provider = DefaultPathProvider{}
}

// AppDir returns the directory holding every file the application owns,
// creating it if needed. $LOGPOST_HOME wins over the per-user config dir.
func AppDir(appName string) (string, error) {
	dir := Provider.Getenv(HomeEnv)
	if dir == "" {
		configDir, err := Provider.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, appName)
	}

	if err := Provider.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// AppFile returns the path of name inside AppDir.
func AppFile(appName, name string) (string, error) {
	dir, err := AppDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
