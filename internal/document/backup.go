package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	tripeditErrors "github.com/vanroute/tripedit/internal/errors"
)

const (
	// DefaultMaxBackups is how many rotated backups are kept per document
	DefaultMaxBackups = 10

	// backupDirName is the sibling directory backups are written into
	backupDirName = "backups_trips"

	backupTimeLayout = "20060102_150405"
	backupSuffix     = ".bak.gz"
)

// BackupDir returns the directory backups of path are kept in.
func BackupDir(path string) string {
	return filepath.Join(filepath.Dir(path), backupDirName)
}

// Backup copies the current contents of path into the backup directory as a
// gzip-compressed, timestamped file, then prunes all but the newest
// maxBackups entries. A missing document is not an error; there is simply
// nothing to back up yet.
func Backup(path string, maxBackups int) error {
	if path == "" {
		return nil
	}
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to open document for backup"))
	}
	defer func() { _ = src.Close() }()

	folder := BackupDir(path)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to create backup directory"))
	}

	base := filepath.Base(path)
	name := fmt.Sprintf("%s.%s%s", base, time.Now().Format(backupTimeLayout), backupSuffix)
	dst, err := os.OpenFile(filepath.Join(folder, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to create backup file"))
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		_ = gz.Close()
		_ = dst.Close()
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to write backup"))
	}
	if err := gz.Close(); err != nil {
		_ = dst.Close()
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to finish backup"))
	}
	if err := dst.Close(); err != nil {
		return tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to close backup"))
	}

	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	return pruneBackups(folder, base, maxBackups)
}

// Backups lists the backup file names for path, oldest first. The timestamp
// in the name sorts lexicographically, so a plain string sort is
// chronological.
func Backups(path string) ([]string, error) {
	folder := BackupDir(path)
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to list backups"))
	}

	base := filepath.Base(path)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// RestoreLatest decompresses the newest backup over the document and returns
// the backup file name it restored. Each save rotates a backup first, so
// restoring the newest one steps back exactly one save; this is what the
// undo command builds on.
func RestoreLatest(path string) (string, error) {
	names, err := Backups(path)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", tripeditErrors.NewDocumentError(path, tripeditErrors.ErrNoBackups)
	}
	newest := names[len(names)-1]

	src, err := os.Open(filepath.Join(BackupDir(path), newest))
	if err != nil {
		return "", tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to open backup"))
	}
	defer func() { _ = src.Close() }()

	gz, err := gzip.NewReader(src)
	if err != nil {
		return "", tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to read backup"))
	}
	defer func() { _ = gz.Close() }()

	data, err := io.ReadAll(gz)
	if err != nil {
		return "", tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to decompress backup"))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", tripeditErrors.NewDocumentError(path, tripeditErrors.Wrap(err, "failed to restore backup"))
	}
	return newest, nil
}

// pruneBackups removes the oldest backups beyond keep.
func pruneBackups(folder, base string, keep int) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return tripeditErrors.Wrap(err, "failed to list backup directory for pruning")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for len(names) > keep {
		if err := os.Remove(filepath.Join(folder, names[0])); err != nil && !os.IsNotExist(err) {
			return tripeditErrors.Wrap(err, "failed to prune old backup")
		}
		names = names[1:]
	}
	return nil
}
