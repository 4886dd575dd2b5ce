package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/checkout"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	orderService    *order.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, orderService *order.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		config:          cfg,
	}
}

// GetSummary handles POST /checkout/summary. The body carries the add-on
// toggles; the applied promo is read from the store and re-validated against
// the current selection, so a stale discount never survives a cart change.
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req checkout.OptionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	summary, err := h.checkoutService.GetSummary(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build checkout summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary built",
		"data":    summary,
	})
}

// ApplyPromo handles POST /checkout/promo
func (h *CheckoutHandler) ApplyPromo(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req checkout.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	promo, err := h.checkoutService.ApplyPromo(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code applied",
		"data":    promo,
	})
}

// RemovePromo handles DELETE /checkout/promo
func (h *CheckoutHandler) RemovePromo(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.checkoutService.RemovePromo(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove promo code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code removed",
	})
}

// GetAppliedPromo handles GET /checkout/promo
func (h *CheckoutHandler) GetAppliedPromo(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	promo := h.checkoutService.GetAppliedPromo(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"data": promo,
	})
}

// PlaceOrder handles POST /checkout/place-order. Payment is the wallet
// balance; the whole placement runs in one transaction.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// GetConfirmation handles GET /checkout/confirmation/:orderNumber. The order
// record is authoritative; the cached checkout snapshot only fills in when
// the order carries no breakdown.
func (h *CheckoutHandler) GetConfirmation(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order number is required"})
		return
	}

	confirmation, err := h.orderService.GetConfirmation(c.Request.Context(), userID, orderNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order confirmation retrieved",
		"data":    confirmation,
	})
}
