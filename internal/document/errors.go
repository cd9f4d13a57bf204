package document

import "errors"

var (
	// ErrDocumentNotFound signals an unknown id, or a catalog row whose
	// backing file is gone. Callers see both the same way.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrThumbnailNotAvailable signals a document that exists but has no
	// thumbnail; distinct from ErrDocumentNotFound so clients can ask for
	// generation instead of giving up.
	ErrThumbnailNotAvailable = errors.New("thumbnail not available")
	// ErrUnsupportedMediaType rejects non-PDF uploads before any write.
	ErrUnsupportedMediaType = errors.New("only application/pdf uploads are accepted")
	// ErrFileTooLarge rejects uploads over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyBatch rejects upload requests carrying no files.
	ErrEmptyBatch = errors.New("no files in upload")
)
