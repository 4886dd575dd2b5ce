package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/coffee-marketplace/internal/pkg/pdf"
)

// InvoiceHandler handles invoice PDF endpoints
type InvoiceHandler struct {
	orderService *order.Service
	userService  *user.Service
	pdfService   *pdf.Service
	config       *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, userService *user.Service, pdfService *pdf.Service, cfg *config.Config) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		userService:  userService,
		pdfService:   pdfService,
		config:       cfg,
	}
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ord, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load customer details",
		})
		return
	}

	buf, err := h.pdfService.GenerateInvoice(ord, profile.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("invoice-%s.pdf", ord.OrderNumber)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
