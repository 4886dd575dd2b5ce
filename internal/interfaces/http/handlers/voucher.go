package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/domain/voucher"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
)

// VoucherHandler handles voucher endpoints. Sellers manage vouchers for
// their own vendor; product voucher listings are public.
type VoucherHandler struct {
	voucherStore   *voucher.Store
	productService *product.Service
	config         *config.Config
}

// NewVoucherHandler creates a new voucher handler
func NewVoucherHandler(voucherStore *voucher.Store, productService *product.Service, cfg *config.Config) *VoucherHandler {
	return &VoucherHandler{
		voucherStore:   voucherStore,
		productService: productService,
		config:         cfg,
	}
}

// GetVendorVouchers handles GET /seller/vouchers
func (h *VoucherHandler) GetVendorVouchers(c *gin.Context) {
	vendor, ok := h.resolveVendor(c)
	if !ok {
		return
	}

	vouchers := h.voucherStore.GetVouchersForVendor(c.Request.Context(), vendor.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Vouchers retrieved successfully",
		"data":    vouchers,
	})
}

// CreateVoucher handles POST /seller/vouchers. The vendor is always the
// caller's own; a vendor_id in the body is overridden.
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	vendor, ok := h.resolveVendor(c)
	if !ok {
		return
	}

	var req voucher.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	req.VendorID = vendor.ID

	created, err := h.voucherStore.CreateVoucher(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Voucher created successfully",
		"data":    created,
	})
}

// UpdateVoucher handles PUT /seller/vouchers/:id
func (h *VoucherHandler) UpdateVoucher(c *gin.Context) {
	vendor, ok := h.resolveVendor(c)
	if !ok {
		return
	}

	voucherID := c.Param("id")
	if !h.ownsVoucher(c, vendor.ID, voucherID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	var req voucher.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.voucherStore.UpdateVoucher(c.Request.Context(), voucherID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Voucher updated successfully",
		"data":    updated,
	})
}

// DeleteVoucher handles DELETE /seller/vouchers/:id
func (h *VoucherHandler) DeleteVoucher(c *gin.Context) {
	vendor, ok := h.resolveVendor(c)
	if !ok {
		return
	}

	voucherID := c.Param("id")
	if !h.ownsVoucher(c, vendor.ID, voucherID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	deleted, err := h.voucherStore.DeleteVoucher(c.Request.Context(), voucherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Voucher deleted successfully",
	})
}

// GetProductVouchers handles GET /products/:id/vouchers
func (h *VoucherHandler) GetProductVouchers(c *gin.Context) {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	prod, err := h.productService.GetProduct(productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	vouchers := h.voucherStore.GetVouchersForProduct(c.Request.Context(), prod.ID, prod.VendorID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Vouchers retrieved successfully",
		"data":    vouchers,
	})
}

// resolveVendor loads the caller's vendor profile, writing the error
// response itself on failure
func (h *VoucherHandler) resolveVendor(c *gin.Context) (*product.Vendor, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	vendor, err := h.productService.GetVendorByUser(userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "No vendor profile for this account"})
		return nil, false
	}
	return vendor, true
}

// ownsVoucher reports whether a voucher belongs to the vendor
func (h *VoucherHandler) ownsVoucher(c *gin.Context, vendorID uint, voucherID string) bool {
	for _, v := range h.voucherStore.GetVouchersForVendor(c.Request.Context(), vendorID) {
		if v.ID == voucherID {
			return true
		}
	}
	return false
}
