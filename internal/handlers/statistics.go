package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/services"
)

type StatisticsHandler struct {
	service *services.StatisticsService
}

func NewStatisticsHandler(service *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

// GetSummary returns org-wide generation/override/download totals
// GET /api/v1/statistics/summary
func (h *StatisticsHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(orgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get statistics summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
