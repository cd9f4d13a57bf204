package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medetbek/docvault/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(service *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), service)
	return router
}

func multipartBody(t *testing.T, files map[string][]byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, content := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadEndpointCreatesDocuments(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	body, contentType := multipartBody(t, map[string][]byte{
		"report.pdf": []byte("%PDF-1.4 fake"),
	}, "application/pdf")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Documents []Document `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "report.pdf", resp.Documents[0].OriginalName)
	assert.Equal(t, "application/pdf", resp.Documents[0].MimeType)
	require.NotNil(t, resp.Documents[0].ThumbnailPath)
	assert.Contains(t, *resp.Documents[0].ThumbnailPath, ".png")
}

func TestUploadEndpointRejectsNonPDF(t *testing.T) {
	repo := newFakeCatalog()
	service := newTestService(repo, newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	body, contentType := multipartBody(t, map[string][]byte{
		"notes.txt": []byte("plain text"),
	}, "text/plain")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	assert.Empty(t, repo.docs)
}

func TestUploadEndpointRejectsOversize(t *testing.T) {
	logg := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{}, logg, 16, 92)
	router := newTestRouter(service)

	body, contentType := multipartBody(t, map[string][]byte{
		"big.pdf": bytes.Repeat([]byte("x"), 64),
	}, "application/pdf")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestUploadEndpointRequiresFiles(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDownloadEndpointStreamsOriginal(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	content := []byte("%PDF-1.4 body")
	doc, err := service.Upload(context.Background(), pdfInput("file.pdf", content))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/"+doc.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "file.pdf")
	assert.Equal(t, content, rr.Body.Bytes())
}

func TestDownloadEndpointUnknownID(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownloadEndpointInvalidID(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteEndpointThenGet(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	doc, err := service.Upload(context.Background(), pdfInput("doomed.pdf", []byte("pdf")))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/"+doc.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/"+doc.ID.String(), nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/documents/"+doc.ID.String(), nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestThumbnailEndpointDistinguishesAbsence(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("%w: corrupt", render.ErrRender)}
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), renderer)
	router := newTestRouter(service)

	doc, err := service.Upload(context.Background(), pdfInput("bare.pdf", []byte("pdf")))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/"+doc.ID.String()+"/thumbnail", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "thumbnail not available")

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/"+uuid.NewString()+"/thumbnail", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotContains(t, rr.Body.String(), "thumbnail not available")
}

func TestGenerateThumbnailEndpoint(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("%w: corrupt", render.ErrRender)}
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), renderer)
	router := newTestRouter(service)

	doc, err := service.Upload(context.Background(), pdfInput("retry.pdf", []byte("pdf")))
	require.NoError(t, err)

	// First explicit attempt fails and says so.
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/"+doc.ID.String()+"/thumbnail", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "render")

	// Renderer recovers; regeneration succeeds and returns the document.
	renderer.mu.Lock()
	renderer.err = nil
	renderer.mu.Unlock()

	req = httptest.NewRequest(http.MethodPost, "/v1/documents/"+doc.ID.String()+"/thumbnail", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Document Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Document.ThumbnailPath)

	// And the thumbnail endpoint now serves it.
	req = httptest.NewRequest(http.MethodGet, "/v1/documents/"+doc.ID.String()+"/thumbnail", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
}

func TestListEndpoint(t *testing.T) {
	service := newTestService(newFakeCatalog(), newFakeBlobStore(), &fakeRenderer{})
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"documents":[]}`, rr.Body.String())
}
