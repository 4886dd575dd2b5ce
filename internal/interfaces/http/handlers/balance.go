package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
)

// BalanceHandler handles wallet balance endpoints
type BalanceHandler struct {
	userService *user.Service
	config      *config.Config
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(userService *user.Service, cfg *config.Config) *BalanceHandler {
	return &BalanceHandler{
		userService: userService,
		config:      cfg,
	}
}

// GetBalance handles GET /balance
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	balance, err := h.userService.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"balance":  balance,
			"currency": h.config.Checkout.Currency,
		},
	})
}

// TopUp handles POST /balance/topup
func (h *BalanceHandler) TopUp(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req user.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	balance, err := h.userService.TopUpBalance(userID, &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Balance topped up successfully",
		"data": gin.H{
			"balance":  balance,
			"currency": h.config.Checkout.Currency,
		},
	})
}

// GetTransactions handles GET /balance/transactions
func (h *BalanceHandler) GetTransactions(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transactions, err := h.userService.GetBalanceTransactions(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transactions retrieved successfully",
		"data":    transactions,
	})
}
