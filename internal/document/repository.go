package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository is the document catalog over PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a catalog row, assigning the id here and the upload date in
// the database. The stored row is returned.
func (r *Repository) Create(ctx context.Context, doc Document) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO documents (id, filename, originalname, mimetype, size, path, thumbnail_path)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, filename, originalname, mimetype, size, path, thumbnail_path, upload_date;`

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		doc.Filename,
		doc.OriginalName,
		doc.MimeType,
		doc.Size,
		doc.Path,
		doc.ThumbnailPath,
	)

	var stored Document
	if err := row.Scan(&stored.ID, &stored.Filename, &stored.OriginalName, &stored.MimeType, &stored.Size, &stored.Path, &stored.ThumbnailPath, &stored.UploadDate); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return stored, nil
}

// Get fetches a single catalog row by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, filename, originalname, mimetype, size, path, thumbnail_path, upload_date
FROM documents
WHERE id = $1;`

	var doc Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.Size,
		&doc.Path,
		&doc.ThumbnailPath,
		&doc.UploadDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns every catalog row. Callers must not depend on ordering.
func (r *Repository) List(ctx context.Context) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, filename, originalname, mimetype, size, path, thumbnail_path, upload_date
FROM documents;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.MimeType, &doc.Size, &doc.Path, &doc.ThumbnailPath, &doc.UploadDate); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Update overwrites the full mutable row by id. In practice only
// thumbnail_path ever changes after creation.
func (r *Repository) Update(ctx context.Context, doc Document) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE documents
SET filename = $2, originalname = $3, mimetype = $4, size = $5, path = $6, thumbnail_path = $7
WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.Filename,
		doc.OriginalName,
		doc.MimeType,
		doc.Size,
		doc.Path,
		doc.ThumbnailPath,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Delete removes a catalog row and returns the removed document so the
// caller can clean up the backing blobs. Zero rows affected maps to
// ErrDocumentNotFound.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
DELETE FROM documents
WHERE id = $1
RETURNING id, filename, originalname, mimetype, size, path, thumbnail_path, upload_date;`

	var doc Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.Size,
		&doc.Path,
		&doc.ThumbnailPath,
		&doc.UploadDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("delete document: %w", err)
	}
	return doc, nil
}
