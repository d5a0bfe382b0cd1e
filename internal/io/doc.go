// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory checks and creation
//   - Size probing and best-effort removal of intermediate files
//   - Atomic writes for small artifacts (cover art, playlists, settings)
//   - Cover image resizing and JPEG conversion
//
// # File Operations
//
//	// Fail early when the destination directory is missing
//	err := ioutils.RequireDir("/downloads")
//
//	// Local size of a partially written stream, 0 if absent
//	size, exists, err := ioutils.FileSize("/downloads/Title.video.80")
//
//	// Remove intermediates, ignoring files that are already gone
//	err = ioutils.RemoveFiles(paths...)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Part 1/2") // Returns "Part 1_2"
//
// # Cover Art
//
// CoverProcessor turns a downloaded image into a bounded JPEG:
//
//	proc := ioutils.NewCoverProcessor(1000)
//	jpeg, _ := proc.Process(ctx, imageData)
package ioutils
