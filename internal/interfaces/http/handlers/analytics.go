// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/analytics"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler handles the admin dashboard
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: service}
}

// GetDashboard handles GET /admin/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data":    stats,
	})
}
