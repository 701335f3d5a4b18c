package document

import (
	"os"
	"path/filepath"
	"strings"
)

// lastPathFile names the state file that remembers the most recently opened
// document
const lastPathFile = "lastfile"

// stateDir resolves where the last-file marker lives, following the XDG Base
// Directory Specification with the same fallbacks the log file uses.
func stateDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(homeDir, ".local", "share")
		} else {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, "tripedit")
}

// LastPath returns the most recently opened document path, or "" when none
// has been remembered yet. Errors reading the marker are treated as "no
// remembered path"; this is a convenience, never a hard dependency.
func LastPath() string {
	data, err := os.ReadFile(filepath.Join(stateDir(), lastPathFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// RememberPath stores path as the most recently opened document. Best-effort:
// callers may ignore the returned error.
func RememberPath(path string) error {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, lastPathFile), []byte(path+"\n"), 0644)
}
