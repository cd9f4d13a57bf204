// Package blob manages placement of uploaded originals and generated
// thumbnails. Blobs are addressed by generated name, not content hash;
// names are never reused across documents even after deletion.
package blob

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"time"
)

// Placement describes where an uploaded original landed.
type Placement struct {
	Name string
	Path string
	Size int64
}

// Store is the blob storage contract shared by the disk and MinIO backends.
// Paths are relative to the store's working root and stable for the blob's
// lifetime.
type Store interface {
	// EnsureRoots creates the upload root and thumbnail sub-root if absent.
	// Safe to call repeatedly.
	EnsureRoots(ctx context.Context) error

	// Place writes content under a freshly generated name derived from
	// originalName's extension and returns the stored name, relative path
	// and written byte count. Failures wrap ErrWrite.
	Place(ctx context.Context, originalName string, content io.Reader) (Placement, error)

	// PlaceThumbnail writes a rendered PNG under the thumbnail sub-root and
	// returns its relative path.
	PlaceThumbnail(ctx context.Context, name string, png []byte) (string, error)

	// Exists reports filesystem presence; a missing path is not an error.
	Exists(ctx context.Context, relPath string) bool

	// Open returns a reader over the blob, or ErrBlobNotFound if the path is
	// absent at call time. Races against external deletion are acceptable.
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)

	// Remove deletes the blob. Absence of the target is not an error.
	Remove(ctx context.Context, relPath string) error
}

// NewName derives a storage-unique filename from the ingestion instant, a
// random suffix and the original extension: <unix-ms>-<random><ext>.
// Uniqueness is probabilistic, which is sufficient for this namespace.
func NewName(originalName string) string {
	suffix := rand.Int64N(1_000_000_000)
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), suffix, path.Ext(originalName))
}
