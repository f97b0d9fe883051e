package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/services"
)

type CaseHandler struct {
	service *services.CaseService
}

func NewCaseHandler(service *services.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// CreateCase registers a new procurement case
// POST /api/v1/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req services.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	pcase, err := h.service.Create(c.Request.Context(), orgID(c), userID(c), req, requestMeta(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Case created successfully",
		"case":    pcase,
	})
}

// GetCase retrieves a case by ID
// GET /api/v1/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	pcase, err := h.service.Get(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": pcase})
}

// ListCases retrieves the organization's cases, newest first
// GET /api/v1/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := h.service.List(c.Request.Context(), orgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"count": len(cases),
	})
}
