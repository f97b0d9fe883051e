package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/services"
)

type PackHandler struct {
	service *services.PackService
}

func NewPackHandler(service *services.PackService) *PackHandler {
	return &PackHandler{service: service}
}

// ListPacks returns the pack catalog with the organization's effective
// activation flags
// GET /api/v1/packs
func (h *PackHandler) ListPacks(c *gin.Context) {
	packs, err := h.service.List(c.Request.Context(), orgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packs": packs,
		"count": len(packs),
	})
}

type activationRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetPackActivation toggles a pack for the organization
// PUT /api/v1/packs/:id/activation
func (h *PackHandler) SetPackActivation(c *gin.Context) {
	packID := c.Param("id")

	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	if err := h.service.SetActive(c.Request.Context(), orgID(c), userID(c), packID, *req.IsActive, requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Pack activation updated successfully",
		"pack_id":   packID,
		"is_active": *req.IsActive,
	})
}
