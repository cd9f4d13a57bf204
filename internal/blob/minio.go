package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/medetbek/docvault/internal/config"
	"github.com/medetbek/docvault/internal/storage"
	"github.com/minio/minio-go/v7"
)

// MinIOStore implements Store against a MinIO bucket for deployments without
// durable local disk. Object keys mirror the relative paths the disk backend
// would produce, so catalog rows are portable between backends.
type MinIOStore struct {
	client       *minio.Client
	bucket       string
	region       string
	uploadDir    string
	thumbnailDir string
}

// NewMinIOStore builds a MinIO-backed store.
func NewMinIOStore(client *minio.Client, minioCfg config.MinIOConfig, storageCfg config.StorageConfig) *MinIOStore {
	return &MinIOStore{
		client:       client,
		bucket:       minioCfg.Bucket,
		region:       minioCfg.Region,
		uploadDir:    path.Clean(storageCfg.UploadDir),
		thumbnailDir: storageCfg.ThumbnailDir,
	}
}

// EnsureRoots ensures the backing bucket exists. Object stores have no
// directories, so the sub-roots need no further setup.
func (s *MinIOStore) EnsureRoots(ctx context.Context) error {
	return storage.EnsureBucket(ctx, s.client, s.bucket, s.region)
}

// Place streams content into a freshly named object under the upload prefix.
func (s *MinIOStore) Place(ctx context.Context, originalName string, content io.Reader) (Placement, error) {
	name := NewName(originalName)
	key := path.Join(s.uploadDir, name)

	info, err := s.client.PutObject(ctx, s.bucket, key, content, -1, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return Placement{}, fmt.Errorf("%w: put %s: %v", ErrWrite, key, err)
	}

	return Placement{Name: name, Path: key, Size: info.Size}, nil
}

// PlaceThumbnail stores a rendered PNG under the thumbnail prefix.
func (s *MinIOStore) PlaceThumbnail(ctx context.Context, name string, png []byte) (string, error) {
	key := path.Join(s.uploadDir, s.thumbnailDir, name)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(png), int64(len(png)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		return "", fmt.Errorf("%w: put thumbnail %s: %v", ErrWrite, key, err)
	}
	return key, nil
}

// Exists reports object presence via a stat call.
func (s *MinIOStore) Exists(ctx context.Context, relPath string) bool {
	_, err := s.client.StatObject(ctx, s.bucket, relPath, minio.StatObjectOptions{})
	return err == nil
}

// Open stats the object first so a missing key surfaces as ErrBlobNotFound
// instead of a deferred read error from the lazy GetObject handle.
func (s *MinIOStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, relPath, minio.StatObjectOptions{}); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", relPath, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, relPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", relPath, err)
	}
	return obj, nil
}

// Remove deletes the object; removal of a missing key succeeds.
func (s *MinIOStore) Remove(ctx context.Context, relPath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, relPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", relPath, err)
	}
	return nil
}
