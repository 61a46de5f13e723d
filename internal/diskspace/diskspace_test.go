package diskspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func TestCheckAvailableSpace(t *testing.T) {
	target := filepath.Join(t.TempDir(), "download.bin")

	t.Run("small request", func(t *testing.T) {
		if err := CheckAvailableSpace(target, 1024, 1.1); err != nil {
			t.Errorf("CheckAvailableSpace(1KB) error = %v", err)
		}
	})

	t.Run("zero or unknown size", func(t *testing.T) {
		for _, size := range []int64{0, -1} {
			if err := CheckAvailableSpace(target, size, 1.1); err != nil {
				t.Errorf("CheckAvailableSpace(%d) error = %v, want nil", size, err)
			}
		}
	})

	t.Run("more than the disk holds", func(t *testing.T) {
		available := GetAvailableSpace(target)
		if available == 0 {
			t.Skip("could not determine available space")
		}
		err := CheckAvailableSpace(target, available, 2)
		if !IsInsufficientSpaceError(err) {
			t.Fatalf("CheckAvailableSpace(2x available) error = %v, want InsufficientSpaceError", err)
		}
		var spaceErr *InsufficientSpaceError
		errors.As(err, &spaceErr)
		if spaceErr.RequiredBytes != available*2 {
			t.Errorf("RequiredBytes = %d, want %d", spaceErr.RequiredBytes, available*2)
		}
	})

	t.Run("missing directory passes", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "no", "such", "dir", "f.bin")
		if err := CheckAvailableSpace(missing, 1<<40, 1); err != nil {
			t.Errorf("CheckAvailableSpace(missing dir) error = %v, want nil", err)
		}
	})
}

func TestIsInsufficientSpaceError(t *testing.T) {
	err := &InsufficientSpaceError{Path: "/tmp/f", RequiredBytes: 2 << 20, AvailableBytes: 1 << 20}

	if !IsInsufficientSpaceError(err) {
		t.Error("IsInsufficientSpaceError(direct) = false")
	}
	if !IsInsufficientSpaceError(fmt.Errorf("download: %w", err)) {
		t.Error("IsInsufficientSpaceError(wrapped) = false")
	}
	if IsInsufficientSpaceError(errors.New("other")) {
		t.Error("IsInsufficientSpaceError(other) = true")
	}
	if IsInsufficientSpaceError(nil) {
		t.Error("IsInsufficientSpaceError(nil) = true")
	}

	want := "insufficient disk space for /tmp/f: need 2.00 MB, have 1.00 MB available"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
