package config

import (
	"os"
	"path/filepath"
	"strings"

	gap "github.com/muesli/go-app-paths"
	homedir "github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading tilde and environment variables in a path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err != nil {
		s = path
	}
	return os.ExpandEnv(s)
}

// DefaultCacheDir returns the user cache directory for announcer audio,
// falling back to a temp directory when no user cache dir exists.
func DefaultCacheDir() string {
	scope := gap.NewScope(gap.User, "tysa")
	if dir, err := scope.CacheDir(); err == nil && dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "tysa-cache")
}

// DefaultDataDir returns the user data directory, used for the log file
// and the text store.
func DefaultDataDir() string {
	scope := gap.NewScope(gap.User, "tysa")
	if dirs, err := scope.DataDirs(); err == nil && len(dirs) > 0 {
		return dirs[0]
	}
	home, err := homedir.Dir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".tysa")
}

// ConfigDirs returns the candidate config directories in priority order.
// TYSA_CONFIG_HOME wins, then XDG_CONFIG_HOME, then the platform dirs.
func ConfigDirs() []string {
	scope := gap.NewScope(gap.User, "tysa")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		dirs = nil
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "tysa")}, dirs...)
	}

	if c := os.Getenv("TYSA_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	return dirs
}

// IsYAMLPath reports whether the path has a YAML extension.
func IsYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
