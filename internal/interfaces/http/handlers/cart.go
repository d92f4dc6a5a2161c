// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler handles cart endpoints for guests and customers
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{cartService: carts}
}

// AddToCartRequest represents the add-to-cart body. A missing or unreadable quantity means 1.
type AddToCartRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.Get(c.Request.Context(), cartOwner(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    view,
	})
}

// GetCount handles GET /cart/count
func (h *CartHandler) GetCount(c *gin.Context) {
	count, err := h.cartService.Count(c.Request.Context(), cartOwner(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data":    gin.H{"count": count},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), cartOwner(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// AddProduct handles POST /cart/products/:id
func (h *CartHandler) AddProduct(c *gin.Context) { h.add(c, cart.ProductRef) }

// DecreaseProduct handles POST /cart/products/:id/decrease
func (h *CartHandler) DecreaseProduct(c *gin.Context) { h.decrease(c, cart.ProductRef) }

// RemoveProduct handles DELETE /cart/products/:id
func (h *CartHandler) RemoveProduct(c *gin.Context) { h.remove(c, cart.ProductRef) }

// BuyNowProduct handles POST /cart/buy-now/products/:id
func (h *CartHandler) BuyNowProduct(c *gin.Context) { h.buyNow(c, cart.ProductRef) }

// AddTreatment handles POST /cart/treatments/:id
func (h *CartHandler) AddTreatment(c *gin.Context) { h.add(c, cart.TreatmentRef) }

// DecreaseTreatment handles POST /cart/treatments/:id/decrease
func (h *CartHandler) DecreaseTreatment(c *gin.Context) { h.decrease(c, cart.TreatmentRef) }

// RemoveTreatment handles DELETE /cart/treatments/:id
func (h *CartHandler) RemoveTreatment(c *gin.Context) { h.remove(c, cart.TreatmentRef) }

// BuyNowTreatment handles POST /cart/buy-now/treatments/:id
func (h *CartHandler) BuyNowTreatment(c *gin.Context) { h.buyNow(c, cart.TreatmentRef) }

func (h *CartHandler) add(c *gin.Context, ref func(uint) cart.ItemRef) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Quantity = 1
	}

	owner := cartOwner(c)
	if _, err := h.cartService.Add(c.Request.Context(), owner, ref(id), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, owner, http.StatusCreated, "Item added to cart")
}

func (h *CartHandler) decrease(c *gin.Context, ref func(uint) cart.ItemRef) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	owner := cartOwner(c)
	if err := h.cartService.Decrease(c.Request.Context(), owner, ref(id)); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, owner, http.StatusOK, "Item quantity decreased")
}

func (h *CartHandler) remove(c *gin.Context, ref func(uint) cart.ItemRef) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	owner := cartOwner(c)
	if err := h.cartService.Remove(c.Request.Context(), owner, ref(id)); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, owner, http.StatusOK, "Item removed from cart")
}

func (h *CartHandler) buyNow(c *gin.Context, ref func(uint) cart.ItemRef) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.cartService.BuyNow(c.Request.Context(), cartOwner(c), ref(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart ready for checkout",
		"data":    view,
	})
}

func (h *CartHandler) respondCart(c *gin.Context, owner cart.Owner, status int, message string) {
	view, err := h.cartService.Get(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    view,
	})
}
