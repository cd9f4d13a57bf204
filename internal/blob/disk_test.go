package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/medetbek/docvault/internal/config"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	return NewDiskStore(config.StorageConfig{
		UploadDir:    filepath.Join(t.TempDir(), "uploads"),
		ThumbnailDir: "thumbnails",
	})
}

func TestPlaceWritesFileAndReportsSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content := []byte("%PDF-1.4 test payload")
	placement, err := store.Place(ctx, "report.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if placement.Size != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), placement.Size)
	}
	if !strings.HasSuffix(placement.Name, ".pdf") {
		t.Fatalf("expected .pdf suffix, got %s", placement.Name)
	}
	if !store.Exists(ctx, placement.Path) {
		t.Fatalf("expected placed file to exist at %s", placement.Path)
	}

	rc, err := store.Open(ctx, placement.Path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer rc.Close()

	read, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read placed file: %v", err)
	}
	if !bytes.Equal(read, content) {
		t.Fatalf("content mismatch after round trip")
	}
}

func TestPlaceGeneratesDistinctNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		placement, err := store.Place(ctx, "same.pdf", bytes.NewReader([]byte("x")))
		if err != nil {
			t.Fatalf("Place returned error: %v", err)
		}
		if seen[placement.Name] {
			t.Fatalf("duplicate generated name %s", placement.Name)
		}
		seen[placement.Name] = true
	}
}

func TestNewNameFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-\d+\.pdf$`)
	name := NewName("quarterly report.pdf")
	if !pattern.MatchString(name) {
		t.Fatalf("unexpected name format: %s", name)
	}
}

func TestPlaceThumbnailLandsUnderSubRoot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	relPath, err := store.PlaceThumbnail(ctx, "123-456.pdf.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("PlaceThumbnail returned error: %v", err)
	}

	if !strings.Contains(relPath, "thumbnails") {
		t.Fatalf("expected thumbnail under sub-root, got %s", relPath)
	}
	if !store.Exists(ctx, relPath) {
		t.Fatalf("expected thumbnail to exist at %s", relPath)
	}
}

func TestOpenMissingPathReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if store.Exists(ctx, "uploads/absent.pdf") {
		t.Fatalf("expected Exists to report false for missing path")
	}

	_, err := store.Open(ctx, "uploads/absent.pdf")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	placement, err := store.Place(ctx, "gone.pdf", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if err := store.Remove(ctx, placement.Path); err != nil {
		t.Fatalf("first Remove returned error: %v", err)
	}
	if err := store.Remove(ctx, placement.Path); err != nil {
		t.Fatalf("second Remove should be a no-op, got %v", err)
	}
	if store.Exists(ctx, placement.Path) {
		t.Fatalf("expected file to be gone")
	}
}

func TestEnsureRootsIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.EnsureRoots(ctx); err != nil {
			t.Fatalf("EnsureRoots run %d returned error: %v", i, err)
		}
	}

	info, err := os.Stat(filepath.Join(store.uploadDir, store.thumbnailDir))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected thumbnail root directory, err=%v", err)
	}
}

func TestCheckPathRejectsEscapes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Open(ctx, "../outside.pdf"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for escaping path, got %v", err)
	}
	if _, err := store.Open(ctx, ""); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for empty path, got %v", err)
	}
}
