// Package validation provides input validation for file names and local paths.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName is wrapped by every ValidateFilename failure.
var ErrInvalidFileName = errors.New("invalid file name")

// ValidateFilename checks that a server-side file name can be used as a
// single URL path segment and as a local file name.
//
// Rejected:
//   - empty names
//   - names containing '/' or '\'
//   - names containing NUL
//   - "." and ".."
func ValidateFilename(filename string) error {
	switch {
	case filename == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidFileName)
	case strings.ContainsRune(filename, 0):
		return fmt.Errorf("%w: %q contains a null byte", ErrInvalidFileName, filename)
	case strings.ContainsAny(filename, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFileName, filename)
	case filename == "." || filename == "..":
		return fmt.Errorf("%w: %q is a relative path component", ErrInvalidFileName, filename)
	}
	return nil
}

// ValidatePathInDirectory checks that path, resolved against baseDir, does
// not escape baseDir. Used before writing a downloaded file.
//
//	ValidatePathInDirectory("../../etc/passwd", "/tmp/out") // error
//	ValidatePathInDirectory("report.pdf", "/tmp/out")      // ok
func ValidatePathInDirectory(path string, baseDir string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	base, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolved := filepath.Clean(path)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", path, baseDir)
	}

	return nil
}
