package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/analytics"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles dashboard analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	productService   *product.Service
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, productService *product.Service, cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		productService:   productService,
		config:           cfg,
	}
}

// GetDashboardStats handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve dashboard statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard statistics retrieved successfully",
		"data":    stats,
	})
}

// GetSellerStats handles GET /seller/analytics
func (h *AnalyticsHandler) GetSellerStats(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vendor, err := h.productService.GetVendorByUser(userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "No vendor profile for this account",
		})
		return
	}

	stats, err := h.analyticsService.GetSellerStats(vendor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve seller statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Seller statistics retrieved successfully",
		"data":    stats,
	})
}
