package model

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/dash-downloader/internal/io"
)

const untitled = "untitled"

// Layout computes where an item's files live on disk.
//
// All names are derived from the sanitized title, so two runs against the
// same directory agree on every path. That agreement is what makes resume work.
type Layout struct {
	// Dir is the destination directory. Empty means the current directory.
	Dir string

	// Container is the output extension without the dot (e.g. "mp4").
	Container string
}

// FileTitle sanitizes a display title for use as a file name stem.
func FileTitle(title string) string {
	name := ioutils.SanitizeFileName(strings.TrimSpace(title))
	if name == "" {
		return untitled
	}
	return name
}

// IntermediatePath returns the per-stream file path: <title>.<kind>.<quality>.
func (l Layout) IntermediatePath(title string, s StreamRef) string {
	return filepath.Join(l.Dir, fmt.Sprintf("%s.%s.%d", FileTitle(title), s.Kind, s.Quality))
}

// OutputPath returns the merged output path: <title>.<container>.
func (l Layout) OutputPath(title string) string {
	return filepath.Join(l.Dir, FileTitle(title)+"."+l.container())
}

// CoverPath returns the cover image path: <title>.jpg.
func (l Layout) CoverPath(title string) string {
	return filepath.Join(l.Dir, FileTitle(title)+".jpg")
}

// PlaylistPath returns the path of a playlist file with the given extension.
func (l Layout) PlaylistPath(title, ext string) string {
	return filepath.Join(l.Dir, FileTitle(title)+ext)
}

func (l Layout) container() string {
	c := strings.TrimPrefix(strings.TrimSpace(l.Container), ".")
	if c == "" {
		return "mp4"
	}
	return c
}
