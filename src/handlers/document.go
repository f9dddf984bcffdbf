package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/axialy/axialy-server/src/models"
	"github.com/axialy/axialy-server/src/services"
)

// DocumentHandler handles document and version management plus the
// public document view.
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DocumentRequest represents a document create or update request
type DocumentRequest struct {
	DocKey  string `json:"doc_key" binding:"required,min=1,max=255"`
	DocName string `json:"doc_name" binding:"required,min=1,max=255"`
}

// VersionRequest represents a new version submission
type VersionRequest struct {
	Content string `json:"file_content" binding:"required"`
	Format  string `json:"file_content_format" binding:"required,oneof=md html json xml"`
}

// SetActiveRequest represents an active version change
type SetActiveRequest struct {
	VersionID int64 `json:"version_id" binding:"required"`
}

// RenderedPayloadRequest carries rendered binaries, base64-encoded in
// transit.
type RenderedPayloadRequest struct {
	PDFData  []byte `json:"file_pdf_data"`
	DOCXData []byte `json:"file_docx_data"`
}

// HandleList handles GET /documents
func (h *DocumentHandler) HandleList(c *gin.Context) {
	docs, err := h.documentService.GetAllDocuments(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("document list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "An error occurred. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "documents": docs})
}

// HandleCreate handles POST /documents
func (h *DocumentHandler) HandleCreate(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "doc_key and doc_name are required."})
		return
	}

	docID, err := h.documentService.CreateDocument(c.Request.Context(), req.DocKey, req.DocName)
	if err != nil {
		log.Error().Err(err).Str("doc_key", req.DocKey).Msg("document create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "An error occurred. Please try again."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "id": docID})
}

// HandleGet handles GET /documents/:id
func (h *DocumentHandler) HandleGet(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), docID)
	if err != nil {
		h.respondDocError(c, err, "document fetch failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "document": doc})
}

// HandleUpdate handles PUT /documents/:id
func (h *DocumentHandler) HandleUpdate(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "doc_key and doc_name are required."})
		return
	}

	if err := h.documentService.UpdateDocument(c.Request.Context(), docID, req.DocKey, req.DocName); err != nil {
		h.respondDocError(c, err, "document update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleDelete handles DELETE /documents/:id - versions cascade
func (h *DocumentHandler) HandleDelete(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), docID); err != nil {
		h.respondDocError(c, err, "document delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleCreateVersion handles POST /documents/:id/versions
func (h *DocumentHandler) HandleCreateVersion(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "file_content and a valid file_content_format are required."})
		return
	}

	versionID, err := h.documentService.CreateVersion(c.Request.Context(), docID, req.Content, models.ContentFormat(req.Format))
	if err != nil {
		h.respondDocError(c, err, "version create failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "version_id": versionID})
}

// HandleListVersions handles GET /documents/:id/versions
func (h *DocumentHandler) HandleListVersions(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	versions, err := h.documentService.GetVersions(c.Request.Context(), docID)
	if err != nil {
		h.respondDocError(c, err, "version list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "versions": versions})
}

// HandleSetActive handles POST /documents/:id/active. Making a version
// active clears the rendered payloads of the previously active one.
func (h *DocumentHandler) HandleSetActive(c *gin.Context) {
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "version_id is required."})
		return
	}

	if err := h.documentService.SetActiveVersion(c.Request.Context(), docID, req.VersionID); err != nil {
		h.respondDocError(c, err, "set active version failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleStoreRendered handles PUT /documents/versions/:version_id/rendered
func (h *DocumentHandler) HandleStoreRendered(c *gin.Context) {
	versionID, ok := pathID(c, "version_id")
	if !ok {
		return
	}

	var req RenderedPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid payload."})
		return
	}

	err := h.documentService.StoreRenderedPayload(c.Request.Context(), versionID, req.PDFData, req.DOCXData)
	if err != nil {
		if errors.Is(err, services.ErrVersionNotActive) {
			c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "Rendered payloads may only be stored on the active version."})
			return
		}
		h.respondDocError(c, err, "rendered payload store failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleView handles the public GET /view/:doc_key, serving the active
// version's content rendered per its format.
func (h *DocumentHandler) HandleView(c *gin.Context) {
	docKey := c.Param("doc_key")

	doc, err := h.documentService.GetDocumentByKey(c.Request.Context(), docKey)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.String(http.StatusNotFound, "Document not found.")
			return
		}
		log.Error().Err(err).Str("doc_key", docKey).Msg("document view failed")
		c.String(http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}
	if doc.ActiveVersionID == nil {
		c.String(http.StatusNotFound, "Document has no active version.")
		return
	}

	version, err := h.documentService.GetVersionByID(c.Request.Context(), *doc.ActiveVersionID)
	if err != nil {
		log.Error().Err(err).Str("doc_key", docKey).Msg("active version fetch failed")
		c.String(http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	switch version.ContentFormat {
	case models.FormatHTML:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(version.Content))
	case models.FormatJSON:
		c.Data(http.StatusOK, "application/json", []byte(version.Content))
	case models.FormatXML:
		c.Data(http.StatusOK, "application/xml", []byte(version.Content))
	default:
		// Markdown is served preformatted rather than converted
		body := fmt.Sprintf("<!DOCTYPE html><html><head><title>%s</title></head><body><pre>%s</pre></body></html>",
			html.EscapeString(doc.DocName), html.EscapeString(version.Content))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

// pathID parses a numeric path parameter, writing the error response
// itself when invalid.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid " + name + "."})
		return 0, false
	}
	return id, true
}

func (h *DocumentHandler) respondDocError(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Not found."})
		return
	}
	log.Error().Err(err).Msg(logMsg)
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "An error occurred. Please try again."})
}
