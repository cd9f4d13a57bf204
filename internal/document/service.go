package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/medetbek/docvault/internal/blob"
	"github.com/medetbek/docvault/internal/metrics"
	"github.com/medetbek/docvault/internal/render"
)

const acceptedMimeType = "application/pdf"

// catalog is the slice of the repository the service depends on.
type catalog interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id uuid.UUID) (Document, error)
}

// Service orchestrates the document lifecycle: upload, retrieval, deletion
// and thumbnail generation across the catalog, the blob store and the
// renderer.
type Service struct {
	repo         catalog
	blobs        blob.Store
	renderer     render.Renderer
	logger       *slog.Logger
	maxFileSize  int64
	thumbnailDPI int
}

// NewService constructs a document service.
func NewService(repo catalog, blobs blob.Store, renderer render.Renderer, logger *slog.Logger, maxFileSize int64, thumbnailDPI int) *Service {
	return &Service{
		repo:         repo,
		blobs:        blobs,
		renderer:     renderer,
		logger:       logger.With("component", "document-service"),
		maxFileSize:  maxFileSize,
		thumbnailDPI: thumbnailDPI,
	}
}

// UploadInput carries one file of an upload request.
type UploadInput struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// Upload ingests a single document: validate, place the original, attempt a
// best-effort thumbnail, then create the catalog row. A thumbnail failure is
// logged and leaves ThumbnailPath unset; it never fails the upload.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	if err := s.validate(in); err != nil {
		return Document{}, err
	}
	return s.uploadValidated(ctx, in)
}

// UploadBatch processes files as an ordered sequence of independent uploads.
// Every file is validated before any write, so a validation failure aborts
// the whole batch with nothing stored. A mid-pipeline failure returns the
// documents stored so far together with the error; earlier successes are not
// rolled back.
func (s *Service) UploadBatch(ctx context.Context, inputs []UploadInput) ([]Document, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, in := range inputs {
		if err := s.validate(in); err != nil {
			return nil, fmt.Errorf("%s: %w", in.OriginalName, err)
		}
	}

	docs := make([]Document, 0, len(inputs))
	for _, in := range inputs {
		doc, err := s.uploadValidated(ctx, in)
		if err != nil {
			return docs, fmt.Errorf("%s: %w", in.OriginalName, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) validate(in UploadInput) error {
	if in.MimeType != acceptedMimeType {
		return ErrUnsupportedMediaType
	}
	if in.Size > s.maxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

func (s *Service) uploadValidated(ctx context.Context, in UploadInput) (Document, error) {
	placement, err := s.blobs.Place(ctx, in.OriginalName, in.Content)
	if err != nil {
		return Document{}, err
	}
	// Declared size passed validation; re-check what actually landed.
	if placement.Size > s.maxFileSize {
		if rerr := s.blobs.Remove(ctx, placement.Path); rerr != nil {
			s.logger.Warn("cleanup of oversize upload failed", "path", placement.Path, "error", rerr)
		}
		return Document{}, ErrFileTooLarge
	}

	doc := Document{
		Filename:     placement.Name,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         placement.Size,
		Path:         placement.Path,
	}

	if thumbPath, err := s.makeThumbnail(ctx, placement.Name, placement.Path); err != nil {
		s.logger.Warn("thumbnail generation failed, continuing without",
			"filename", placement.Name, "error", err)
		metrics.ThumbnailFailed()
	} else {
		doc.ThumbnailPath = &thumbPath
		metrics.ThumbnailGenerated()
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if rerr := s.blobs.Remove(ctx, placement.Path); rerr != nil {
			s.logger.Warn("cleanup after failed insert", "path", placement.Path, "error", rerr)
		}
		if doc.HasThumbnail() {
			if rerr := s.blobs.Remove(ctx, *doc.ThumbnailPath); rerr != nil {
				s.logger.Warn("cleanup after failed insert", "path", *doc.ThumbnailPath, "error", rerr)
			}
		}
		return Document{}, err
	}

	metrics.DocumentUploaded()
	return stored, nil
}

// List returns all catalog rows; no ordering is guaranteed.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

// Retrieve returns a document's metadata and a reader over its original.
// A catalog row whose file is gone from storage reads as not found.
func (s *Service) Retrieve(ctx context.Context, id uuid.UUID) (Document, io.ReadCloser, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}

	if !s.blobs.Exists(ctx, doc.Path) {
		return Document{}, nil, ErrDocumentNotFound
	}

	rc, err := s.blobs.Open(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return Document{}, nil, ErrDocumentNotFound
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

// Remove deletes the catalog row, then best-effort deletes both backing
// blobs. The row is the source of truth for clients, so blob delete failures
// are logged and swallowed.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, doc.Path); err != nil {
		s.logger.Warn("remove original blob failed", "path", doc.Path, "error", err)
	}
	if doc.HasThumbnail() {
		if err := s.blobs.Remove(ctx, *doc.ThumbnailPath); err != nil {
			s.logger.Warn("remove thumbnail blob failed", "path", *doc.ThumbnailPath, "error", err)
		}
	}

	metrics.DocumentDeleted()
	return nil
}

// GenerateThumbnail renders and stores a thumbnail on explicit request,
// overwriting any prior one. Unlike the upload-time attempt, failures here
// propagate: the caller asked for this work and expects to know.
func (s *Service) GenerateThumbnail(ctx context.Context, id uuid.UUID) (Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}

	thumbPath, err := s.makeThumbnail(ctx, doc.Filename, doc.Path)
	if err != nil {
		metrics.ThumbnailFailed()
		if errors.Is(err, blob.ErrBlobNotFound) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}

	doc.ThumbnailPath = &thumbPath
	if err := s.repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}

	metrics.ThumbnailGenerated()
	return doc, nil
}

// RetrieveThumbnail returns a reader over the document's thumbnail.
// A document without a recorded thumbnail reads as ErrThumbnailNotAvailable,
// distinct from not-found; a recorded thumbnail missing from storage reads
// as not found.
func (s *Service) RetrieveThumbnail(ctx context.Context, id uuid.UUID) (Document, io.ReadCloser, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}

	if !doc.HasThumbnail() {
		return Document{}, nil, ErrThumbnailNotAvailable
	}

	if !s.blobs.Exists(ctx, *doc.ThumbnailPath) {
		return Document{}, nil, ErrDocumentNotFound
	}

	rc, err := s.blobs.Open(ctx, *doc.ThumbnailPath)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return Document{}, nil, ErrDocumentNotFound
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

// makeThumbnail is the single render-and-store path shared by upload-time
// (best-effort) and explicit (mandatory) generation; callers choose whether
// its error is suppressed or propagated.
//
// The document is spooled to a temp file first so the renderer always sees a
// local path, regardless of which blob backend holds the original. The
// thumbnail name keeps the stored filename's extension before the .png
// suffix ("<ts>-<rand>.pdf.png"), preserved for client compatibility.
func (s *Service) makeThumbnail(ctx context.Context, filename, relPath string) (string, error) {
	rc, err := s.blobs.Open(ctx, relPath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "docvault-render-*.pdf")
	if err != nil {
		return "", fmt.Errorf("spool document: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("spool document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("spool document: %w", err)
	}

	png, err := s.renderer.RenderFirstPage(ctx, tmp.Name(), s.thumbnailDPI)
	if err != nil {
		return "", err
	}

	return s.blobs.PlaceThumbnail(ctx, filename+".png", png)
}
