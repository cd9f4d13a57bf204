package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/medetbek/docvault/internal/config"
)

// DiskStore places blobs on the local filesystem under a configured upload
// root, with thumbnails in a sub-directory. Relative paths it hands out are
// resolved against the process working directory.
type DiskStore struct {
	uploadDir    string
	thumbnailDir string
}

// NewDiskStore builds a filesystem-backed store from storage configuration.
func NewDiskStore(cfg config.StorageConfig) *DiskStore {
	return &DiskStore{
		uploadDir:    filepath.Clean(cfg.UploadDir),
		thumbnailDir: cfg.ThumbnailDir,
	}
}

// EnsureRoots creates the upload and thumbnail directories if absent.
func (s *DiskStore) EnsureRoots(ctx context.Context) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return fmt.Errorf("%w: create upload root: %v", ErrWrite, err)
	}
	if err := os.MkdirAll(filepath.Join(s.uploadDir, s.thumbnailDir), 0o755); err != nil {
		return fmt.Errorf("%w: create thumbnail root: %v", ErrWrite, err)
	}
	return nil
}

// Place writes content to a new file under the upload root. O_EXCL guards
// the (overwhelmingly improbable) case of a generated name collision.
func (s *DiskStore) Place(ctx context.Context, originalName string, content io.Reader) (Placement, error) {
	if err := s.EnsureRoots(ctx); err != nil {
		return Placement{}, err
	}

	name := NewName(originalName)
	relPath := filepath.Join(s.uploadDir, name)

	f, err := os.OpenFile(relPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Placement{}, fmt.Errorf("%w: create %s: %v", ErrWrite, name, err)
	}

	written, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(relPath)
		return Placement{}, fmt.Errorf("%w: write %s: %v", ErrWrite, name, err)
	}

	return Placement{Name: name, Path: relPath, Size: written}, nil
}

// PlaceThumbnail writes a PNG under the thumbnail sub-root.
func (s *DiskStore) PlaceThumbnail(ctx context.Context, name string, png []byte) (string, error) {
	if err := s.EnsureRoots(ctx); err != nil {
		return "", err
	}

	relPath := filepath.Join(s.uploadDir, s.thumbnailDir, name)
	if err := os.WriteFile(relPath, png, 0o644); err != nil {
		return "", fmt.Errorf("%w: write thumbnail %s: %v", ErrWrite, name, err)
	}
	return relPath, nil
}

// Exists reports whether the path currently resolves to a file.
func (s *DiskStore) Exists(ctx context.Context, relPath string) bool {
	if err := checkPath(relPath); err != nil {
		return false
	}
	info, err := os.Stat(relPath)
	return err == nil && !info.IsDir()
}

// Open returns a reader over the file at relPath. Last check wins: the file
// may vanish between Exists and Open, in which case ErrBlobNotFound surfaces
// here as well.
func (s *DiskStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	if err := checkPath(relPath); err != nil {
		return nil, err
	}

	f, err := os.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open %s: %w", relPath, err)
	}
	return f, nil
}

// Remove deletes the file at relPath; a missing target is a no-op.
func (s *DiskStore) Remove(ctx context.Context, relPath string) error {
	if err := checkPath(relPath); err != nil {
		return err
	}

	if err := os.Remove(relPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", relPath, err)
	}
	return nil
}

// checkPath rejects empty and upward-escaping paths. Catalog rows are the
// only source of these values, so this guards corrupted rows, not callers.
func checkPath(relPath string) error {
	if relPath == "" {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(relPath); strings.HasPrefix(cleaned, "..") {
		return ErrInvalidPath
	}
	return nil
}
