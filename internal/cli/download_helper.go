package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filebox/filebox-client/internal/api"
	"github.com/filebox/filebox-client/internal/diskspace"
	"github.com/filebox/filebox-client/internal/logging"
	"github.com/filebox/filebox-client/internal/util/buffers"
	"github.com/filebox/filebox-client/internal/validation"
)

// fileDownloader is implemented by *api.Client.
type fileDownloader interface {
	DownloadFile(ctx context.Context, fileName string, w io.Writer) (int64, error)
}

// executeFileDownload - Common download logic for files download and the download shortcut.
// Files are written to a temporary name first and renamed on success, so a
// failed download never leaves a truncated file under the real name.
func executeFileDownload(
	ctx context.Context,
	out io.Writer,
	names []string,
	outputDir string,
	overwrite bool,
	client fileDownloader,
	logger *logging.Logger,
) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one file name is required")
	}
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger = logger.WithFields(map[string]string{"outdir": outputDir})

	failed := 0
	for i, name := range names {
		n, err := downloadOne(ctx, client, name, outputDir, overwrite)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("file", name).Msg("Download failed")
			fmt.Fprintf(out, "  x %s: %v\n", name, err)
			if diskspace.IsInsufficientSpaceError(err) {
				// every remaining file goes to the same full disk
				for _, skipped := range names[i+1:] {
					failed++
					fmt.Fprintf(out, "  x %s: skipped, output directory is full\n", skipped)
				}
				break
			}
			continue
		}
		logger.Debug().Str("file", name).Int64("bytes", n).Msg("Download complete")
		fmt.Fprintf(out, "  ok %s (%d bytes)\n", name, n)
	}

	logger.Debug().
		Int64("copy_buffer_allocations", buffers.GetStats().CopyAllocations).
		Int("files", len(names)).
		Msg("Downloads finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d download(s) failed", failed, len(names))
	}
	return nil
}

// downloadSafetyMargin leaves 10% headroom over the announced size.
const downloadSafetyMargin = 1.1

// partFile is the temporary download target; it refuses a download the
// destination filesystem cannot hold.
type partFile struct {
	*os.File
	target string
}

func (f *partFile) ExpectSize(n int64) error {
	return diskspace.CheckAvailableSpace(f.target, n, downloadSafetyMargin)
}

func downloadOne(ctx context.Context, client fileDownloader, name, outputDir string, overwrite bool) (int64, error) {
	if err := validation.ValidateFilename(name); err != nil {
		return 0, err
	}
	target := filepath.Join(outputDir, name)
	if err := validation.ValidatePathInDirectory(name, outputDir); err != nil {
		return 0, err
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return 0, fmt.Errorf("%s already exists (use --overwrite)", target)
		}
	}

	tmp, err := os.CreateTemp(outputDir, ".filebox-*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := client.DownloadFile(ctx, name, &partFile{File: tmp, target: target})
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", target, closeErr)
	}
	if err != nil {
		os.Remove(tmpName)
		if api.IsNotFound(err) {
			return 0, fmt.Errorf("%s not found on server: %w", name, err)
		}
		return 0, err
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}
