// Package render wraps the PDF rasterization engine behind a small adapter.
// Engine-specific failures never escape this package; everything normalizes
// to ErrRender with a readable cause.
package render

import (
	"context"
	"errors"
)

// ErrRender is the single failure mode of the adapter: corrupt documents,
// unsupported encryption, zero pages and engine I/O errors all wrap it.
var ErrRender = errors.New("render failed")

// Renderer rasterizes the first page of a document into PNG bytes.
type Renderer interface {
	RenderFirstPage(ctx context.Context, documentPath string, dpi int) ([]byte, error)
}
