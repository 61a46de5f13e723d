package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/filebox/filebox-client/internal/filemanager"
	"github.com/filebox/filebox-client/internal/logging"
)

// expandGlobPatterns expands glob patterns like *.zip, even when quoted.
// Returns a deduplicated list of file paths in argument order.
func expandGlobPatterns(patterns []string) ([]string, error) {
	var expandedFiles []string
	seenFiles := make(map[string]bool)

	add := func(path string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		if !seenFiles[absPath] {
			expandedFiles = append(expandedFiles, absPath)
			seenFiles[absPath] = true
		}
		return nil
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[]") {
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		for _, match := range matches {
			if err := add(match); err != nil {
				return nil, err
			}
		}
	}

	return expandedFiles, nil
}

// executeFileUpload - Common upload logic for files upload and the upload shortcut.
// Files are submitted one at a time; each completed upload reloads the list.
func executeFileUpload(
	ctx context.Context,
	out io.Writer,
	filePatterns []string,
	manager *filemanager.Manager,
	logger *logging.Logger,
) error {
	paths, err := expandGlobPatterns(filePatterns)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		res := uploadOne(ctx, manager, path, logger)
		if !res.OK() {
			failed++
			fmt.Fprintf(out, "  x %s: %v\n", filepath.Base(path), res.Err)
			continue
		}
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			fmt.Fprintf(out, "  ok %s\n", filepath.Base(path))
		} else {
			// Completed but the server answered with an error status.
			fmt.Fprintf(out, "  ! %s: server answered %d: %s\n", filepath.Base(path), res.StatusCode, strings.TrimSpace(res.Body))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d upload(s) failed", failed, len(paths))
	}
	return nil
}

func uploadOne(ctx context.Context, manager *filemanager.Manager, path string, logger *logging.Logger) filemanager.Result {
	info, err := os.Stat(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Cannot read file")
		return filemanager.Result{Kind: filemanager.ResultTransportError, Err: err}
	}
	if info.IsDir() {
		err := fmt.Errorf("%s is a directory", path)
		logger.Error().Err(err).Msg("Cannot upload")
		return filemanager.Result{Kind: filemanager.ResultTransportError, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Cannot open file")
		return filemanager.Result{Kind: filemanager.ResultTransportError, Err: err}
	}
	defer f.Close()

	return manager.SubmitUpload(ctx, filemanager.SelectedFile{Name: filepath.Base(path), Content: f})
}
