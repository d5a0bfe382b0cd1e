package ioutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Ep: Part 1/2")        // Returns "Ep_ Part 1_2"
//	SanitizeFileName("Title...")            // Returns "Title"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// RequireDir returns an error unless path names an existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("directory %s does not exist", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileSize returns the size of the file at path.
//
// A missing file is not an error: it reports (0, false, nil).
func FileSize(path string) (size int64, exists bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if info.IsDir() {
		return 0, false, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), true, nil
}

// RemoveFiles deletes every path, skipping files that do not exist.
// All removals are attempted; the returned error joins any failures.
func RemoveFiles(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
