// internal/interfaces/http/handlers/customer_admin.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CustomerAdminHandler handles admin customer management
type CustomerAdminHandler struct {
	adminService *customer.AdminService
}

// NewCustomerAdminHandler creates a new customer admin handler
func NewCustomerAdminHandler(admin *customer.AdminService) *CustomerAdminHandler {
	return &CustomerAdminHandler{adminService: admin}
}

// GetCustomers handles GET /admin/customers
func (h *CustomerAdminHandler) GetCustomers(c *gin.Context) {
	var req customer.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}

	response, err := h.adminService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customers retrieved successfully",
		"data":    response,
	})
}

// GetCustomer handles GET /admin/customers/:id
func (h *CustomerAdminHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.adminService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer retrieved successfully",
		"data":    result,
	})
}

// UpdateCustomer handles PUT /admin/customers/:id
func (h *CustomerAdminHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req customer.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	adminID, _ := middleware.GetCustomerIDFromContext(c)
	result, err := h.adminService.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer updated successfully",
		"data":    result,
	})
}

// DeleteCustomer handles DELETE /admin/customers/:id
func (h *CustomerAdminHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	adminID, _ := middleware.GetCustomerIDFromContext(c)
	if err := h.adminService.Delete(c.Request.Context(), id, adminID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer deleted successfully",
	})
}

// ExportCustomers handles GET /admin/customers/export
func (h *CustomerAdminHandler) ExportCustomers(c *gin.Context) {
	var req customer.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}

	data, filename, err := h.adminService.ExportCSV(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
