// Package paths expands and prepares filesystem paths taken from configuration.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand expands environment variables, then a leading ~
func Expand(path string) string {
	return ExpandHome(os.ExpandEnv(path))
}

// ExpandHome expands a leading ~ to $HOME
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// EnsureDir creates the parent directory of a file path
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
