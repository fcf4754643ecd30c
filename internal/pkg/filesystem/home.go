package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// QuackDir returns ~/.quack, where config, logs and history live.
func QuackDir() string {
	return filepath.Join(UserHomeDir(), ".quack")
}

// ExpandPath resolves a leading "~/" against the home directory and cleans
// the result.
func ExpandPath(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
