package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is a catalog row plus its backing original blob and optional
// thumbnail blob.
type Document struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalname"`
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	Path         string    `json:"path"`
	// ThumbnailPath is nil until a generation attempt succeeds; a set value
	// does not guarantee the file still exists on disk.
	ThumbnailPath *string   `json:"thumbnailPath,omitempty"`
	UploadDate    time.Time `json:"uploadDate"`
}

// HasThumbnail reports whether a thumbnail path is recorded for the document.
func (d Document) HasThumbnail() bool {
	return d.ThumbnailPath != nil && *d.ThumbnailPath != ""
}
