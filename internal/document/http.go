package document

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medetbek/docvault/internal/render"
)

const maxBatchFiles = 10

// RegisterRoutes mounts document operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/documents", handler.upload)
	group.GET("/documents", handler.list)
	group.GET("/documents/:id", handler.download)
	group.DELETE("/documents/:id", handler.remove)
	group.POST("/documents/:id/thumbnail", handler.generateThumbnail)
	group.GET("/documents/:id/thumbnail", handler.thumbnail)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pdf files submitted"})
		return
	}
	if len(files) > maxBatchFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d files per upload", maxBatchFiles)})
		return
	}

	inputs := make([]UploadInput, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file in upload"})
			return
		}
		opened = append(opened, f)
		inputs = append(inputs, UploadInput{
			OriginalName: fh.Filename,
			MimeType:     fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Content:      f,
		})
	}

	docs, err := h.service.UploadBatch(c.Request.Context(), inputs)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedMediaType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only pdf files are allowed"})
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload size limit"})
		case errors.Is(err, ErrEmptyBatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no pdf files submitted"})
		default:
			// Mid-pipeline failure: report what did get stored so clients
			// can reconcile.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "failed to upload files",
				"uploaded": docs,
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   fmt.Sprintf("%d file(s) uploaded", len(docs)),
		"documents": docs,
	})
}

func (h *httpHandler) list(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *httpHandler) download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, reader, err := h.service.Retrieve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve document"})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalName))
	c.Header("Content-Length", fmt.Sprintf("%d", doc.Size))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
}

func (h *httpHandler) remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) generateThumbnail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, err := h.service.GenerateThumbnail(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		case errors.Is(err, render.ErrRender):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render thumbnail"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate thumbnail"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "thumbnail generated",
		"document": doc,
	})
}

func (h *httpHandler) thumbnail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, reader, err := h.service.RetrieveThumbnail(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrThumbnailNotAvailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "thumbnail not available for this document"})
		case errors.Is(err, ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "thumbnail not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve thumbnail"})
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename+".png"))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
}
