package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/agrolytics/dealer-insights/internal/ingest"
	"github.com/agrolytics/dealer-insights/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ChallanHandler struct {
	ingestService *service.IngestService
}

func NewChallanHandler(ingestService *service.IngestService) *ChallanHandler {
	return &ChallanHandler{ingestService: ingestService}
}

// Upload ingests one or more CSV files from a multipart form. The optional
// "mode" field selects replace or append (default append).
func (h *ChallanHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	mode := c.DefaultPostForm("mode", c.DefaultQuery("mode", service.ModeAppend))

	results := make([]*service.IngestResult, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to open uploaded file")
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read " + file.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read " + file.Filename})
			return
		}

		result, err := h.ingestService.Ingest(c.Request.Context(), file.Filename, data, mode)
		if err != nil {
			respondIngestError(c, file.Filename, err)
			return
		}
		results = append(results, result)

		// Only the first file of a batch may wipe existing data.
		mode = service.ModeAppend
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ImportFromBlob ingests a previously mirrored object by key.
func (h *ChallanHandler) ImportFromBlob(c *gin.Context) {
	var req struct {
		Key  string `json:"key" binding:"required"`
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	result, err := h.ingestService.IngestFromBlob(c.Request.Context(), req.Key, req.Mode)
	if err != nil {
		respondIngestError(c, req.Key, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportAllFromBlob re-ingests every mirrored object under the uploads
// prefix concurrently.
func (h *ChallanHandler) ImportAllFromBlob(c *gin.Context) {
	var req struct {
		Mode    string `json:"mode"`
		Workers int    `json:"workers"`
	}
	// Body is optional; defaults are append mode and the standard pool size.
	_ = c.ShouldBindJSON(&req)

	result, err := h.ingestService.IngestAllFromBlob(c.Request.Context(), req.Mode, req.Workers)
	if err != nil {
		respondIngestError(c, "batch", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListFiles returns metadata for all ingested files.
func (h *ChallanHandler) ListFiles(c *gin.Context) {
	files, err := h.ingestService.ListFiles(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// ListBlobObjects returns the blob mirror contents.
func (h *ChallanHandler) ListBlobObjects(c *gin.Context) {
	objects, err := h.ingestService.ListBlobObjects(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list blob objects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list storage objects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"objects": objects})
}

// respondIngestError maps the ingest failure taxonomy onto HTTP statuses:
// parse and empty-format problems are the client's, storage problems ours.
func respondIngestError(c *gin.Context, name string, err error) {
	log.Error().Err(err).Str("file", name).Msg("import failed")

	switch {
	case errors.Is(err, ingest.ErrParse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "parse_error"})
	case errors.Is(err, ingest.ErrEmptyOrUnrecognized):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": "empty_or_unrecognized_format"})
	case errors.Is(err, ingest.ErrStorage):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "storage_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
