package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/medetbek/docvault/internal/config"
)

// The pdfium runtime is process-wide state: the WebAssembly module is
// compiled once and shared by a pool of single-threaded worker instances.
// First successful init wins; every later NewPdfium call reuses the pool
// (or reports the remembered init failure).
var (
	poolOnce sync.Once
	pool     pdfium.Pool
	poolErr  error
)

func initPool(workers int) {
	pool, poolErr = webassembly.Init(webassembly.Config{
		MinIdle:  workers,
		MaxIdle:  workers,
		MaxTotal: workers,
	})
}

// Pdfium renders PDF pages through the shared pdfium worker pool. Renders
// are serialized per worker because pdfium itself is single-threaded; the
// pool size controls how many run concurrently.
type Pdfium struct {
	pool    pdfium.Pool
	timeout time.Duration
}

// NewPdfium initializes (at most once per process) the pdfium runtime and
// returns a renderer over the shared pool.
func NewPdfium(cfg config.RenderConfig) (*Pdfium, error) {
	poolOnce.Do(func() { initPool(cfg.Workers) })
	if poolErr != nil {
		return nil, fmt.Errorf("%w: init pdfium runtime: %v", ErrRender, poolErr)
	}
	return &Pdfium{pool: pool, timeout: cfg.Timeout}, nil
}

// RenderFirstPage rasterizes page index 0 at the requested DPI and returns
// PNG-encoded bytes. Worker instance, document handle and render buffers are
// released on every exit path.
func (r *Pdfium) RenderFirstPage(ctx context.Context, documentPath string, dpi int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	instance, err := r.pool.GetInstance(r.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire render worker: %v", ErrRender, err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{FilePath: &documentPath})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRender, documentPath, err)
	}
	defer func() {
		_, _ = instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
	}()

	pages, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("%w: count pages: %v", ErrRender, err)
	}
	if pages.PageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrRender)
	}

	rendered, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: dpi,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{Document: doc.Document, Index: 0},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render first page: %v", ErrRender, err)
	}
	defer rendered.Cleanup()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rendered.Result.Image, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}
