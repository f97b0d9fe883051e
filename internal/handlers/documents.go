package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/models"
	"SP-DOCS/internal/packs"
	"SP-DOCS/internal/services"
)

type DocumentHandler struct {
	service *services.DocumentService
}

func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

type generateRequest struct {
	PackID  string            `json:"pack_id"`
	Inputs  map[string]string `json:"inputs"`
	PDFMode packs.PDFMode     `json:"pdf_mode"`
}

// GeneratePack runs the generation pipeline for one pack against a case
// POST /api/v1/cases/:id/documents
func (h *DocumentHandler) GeneratePack(c *gin.Context) {
	caseID := c.Param("id")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.PackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pack_id is required"})
		return
	}
	if req.PDFMode != "" && req.PDFMode != packs.PDFModePerSheet && req.PDFMode != packs.PDFModeSinglePDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid pdf_mode: %s", req.PDFMode)})
		return
	}

	result, err := h.service.GeneratePack(c.Request.Context(), orgID(c), userID(c), caseID, req.PackID, req.Inputs, req.PDFMode, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Documents generated successfully",
		"result":  result,
	})
}

// ListDocuments returns a case's generated documents, newest first
// GET /api/v1/cases/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	caseID := c.Param("id")

	docs, err := h.service.ListDocuments(c.Request.Context(), orgID(c), caseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"count":     len(docs),
	})
}

type overrideRequest struct {
	Number       string     `json:"number"`
	Reason       string     `json:"reason"`
	DocumentDate *time.Time `json:"document_date"`
}

// OverrideNumber sets the manual document number on a backdated case
// POST /api/v1/documents/:id/number-override
func (h *DocumentHandler) OverrideNumber(c *gin.Context) {
	documentID := c.Param("id")

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.Number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
		return
	}

	doc, err := h.service.OverrideNumber(c.Request.Context(), orgID(c), userID(c), documentID, req.Number, req.Reason, req.DocumentDate, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document number overridden successfully",
		"document": doc,
	})
}

type allocateRequest struct {
	FiscalYear   int    `json:"fiscal_year"`
	DocumentType string `json:"document_type"`
}

// AllocateNumber advances the counter and returns the formatted number.
// The allocation is permanent; there is no way to return a number.
// POST /api/v1/running-numbers
func (h *DocumentHandler) AllocateNumber(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.FiscalYear <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fiscal_year is required"})
		return
	}
	if req.DocumentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type is required"})
		return
	}

	number, err := h.service.NextRunningNumber(c.Request.Context(), orgID(c), req.FiscalYear, req.DocumentType, userID(c), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"running_number": number})
}

// DownloadDocument streams a stored output file
// GET /api/v1/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	documentID := c.Param("id")

	doc, reader, err := h.service.OpenDocument(c.Request.Context(), orgID(c), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	contentType := "application/pdf"
	if doc.FileType == models.FileTypeZip {
		contentType = "application/zip"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers already sent; nothing useful left to report to the client.
		_ = c.Error(err)
	}
}
