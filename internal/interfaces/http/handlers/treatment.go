// internal/interfaces/http/handlers/treatment.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/treatment"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// TreatmentHandler handles in-store treatment endpoints
type TreatmentHandler struct {
	treatmentService *treatment.Service
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(treatments *treatment.Service) *TreatmentHandler {
	return &TreatmentHandler{treatmentService: treatments}
}

// GetTreatments handles GET /catalog/treatments
func (h *TreatmentHandler) GetTreatments(c *gin.Context) {
	var req treatment.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}
	req.OnlyAvailable = true

	response, err := h.treatmentService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Treatments retrieved successfully",
		"data":    response,
	})
}

// GetTreatment handles GET /catalog/treatments/:id
func (h *TreatmentHandler) GetTreatment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := h.treatmentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !t.IsAvailable {
		respondError(c, apperror.NotFound("treatment"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Treatment retrieved successfully",
		"data":    t,
	})
}

// GetCategories handles GET /catalog/treatments/categories
func (h *TreatmentHandler) GetCategories(c *gin.Context) {
	categories, err := h.treatmentService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Treatment categories retrieved successfully",
		"data":    categories,
	})
}

// AdminCreate handles POST /admin/treatments
func (h *TreatmentHandler) AdminCreate(c *gin.Context) {
	var req treatment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	t, err := h.treatmentService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Treatment created successfully",
		"data":    t,
	})
}

// AdminUpdate handles PUT /admin/treatments/:id
func (h *TreatmentHandler) AdminUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req treatment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	t, err := h.treatmentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Treatment updated successfully",
		"data":    t,
	})
}

// AdminDelete handles DELETE /admin/treatments/:id
func (h *TreatmentHandler) AdminDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.treatmentService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Treatment deleted successfully",
	})
}
