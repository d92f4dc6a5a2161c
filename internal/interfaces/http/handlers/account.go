// internal/interfaces/http/handlers/account.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles the signed-in customer's own profile
type AccountHandler struct {
	customerService *customer.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(customers *customer.Service) *AccountHandler {
	return &AccountHandler{customerService: customers}
}

// GetProfile handles GET /account/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	profile, err := h.customerService.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile handles PUT /account/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var req customer.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	profile, err := h.customerService.UpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

// ChangePassword handles PUT /account/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var req customer.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	if err := h.customerService.ChangePassword(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
