// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	VendorID   uint   `form:"vendor_id"`
	Search     string `form:"search"`
	Origin     string `form:"origin"`
	RoastLevel string `form:"roast_level"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
	IsActive   *bool  `form:"is_active"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU           string  `json:"sku" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         int64   `json:"price" binding:"required"`
	ComparePrice  int64   `json:"compare_price"`
	CategoryID    uint    `json:"category_id" binding:"required"`
	Origin        string  `json:"origin"`
	RoastLevel    string  `json:"roast_level"`
	Process       string  `json:"process"`
	TastingNotes  string  `json:"tasting_notes"`
	WeightGrams   float64 `json:"weight_grams"`
	IsActive      bool    `json:"is_active"`
	IsFeatured    bool    `json:"is_featured"`
	TrackQuantity bool    `json:"track_quantity"`
	Quantity      int     `json:"quantity"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *int64   `json:"price"`
	ComparePrice  *int64   `json:"compare_price"`
	CategoryID    *uint    `json:"category_id"`
	Origin        *string  `json:"origin"`
	RoastLevel    *string  `json:"roast_level"`
	Process       *string  `json:"process"`
	TastingNotes  *string  `json:"tasting_notes"`
	WeightGrams   *float64 `json:"weight_grams"`
	IsActive      *bool    `json:"is_active"`
	IsFeatured    *bool    `json:"is_featured"`
	TrackQuantity *bool    `json:"track_quantity"`
	Quantity      *int     `json:"quantity"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	// Build query
	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Vendor")

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.VendorID > 0 {
		query = query.Where("vendor_id = ?", req.VendorID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tasting_notes) LIKE ?", search, search, search)
	}

	if req.Origin != "" {
		query = query.Where("LOWER(origin) = ?", strings.ToLower(req.Origin))
	}

	if req.RoastLevel != "" {
		query = query.Where("roast_level = ?", req.RoastLevel)
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Vendor").
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Vendor").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a new product owned by the given vendor
func (s *Service) CreateProduct(vendorID uint, req *ProductCreateRequest) (*Product, error) {
	// Check if SKU already exists
	var existing Product
	if result := s.db.Where("sku = ?", req.SKU).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("product with SKU %s already exists", req.SKU)
	}

	// Generate slug from name
	slug := s.generateSlug(req.Name)

	product := Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Slug:          slug,
		Description:   req.Description,
		Price:         req.Price,
		ComparePrice:  req.ComparePrice,
		VendorID:      vendorID,
		CategoryID:    req.CategoryID,
		Origin:        req.Origin,
		RoastLevel:    req.RoastLevel,
		Process:       req.Process,
		TastingNotes:  req.TastingNotes,
		WeightGrams:   req.WeightGrams,
		IsActive:      req.IsActive,
		IsFeatured:    req.IsFeatured,
		TrackQuantity: req.TrackQuantity,
		Quantity:      req.Quantity,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Load relationships
	s.db.Preload("Category").Preload("Vendor").First(&product, product.ID)

	return &product, nil
}

// UpdateProduct updates an existing product. A non-zero vendorID restricts
// the update to that vendor's own products.
func (s *Service) UpdateProduct(id, vendorID uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	query := s.db.Where("id = ?", id)
	if vendorID > 0 {
		query = query.Where("vendor_id = ?", vendorID)
	}
	result := query.First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = s.generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Origin != nil {
		updates["origin"] = *req.Origin
	}
	if req.RoastLevel != nil {
		updates["roast_level"] = *req.RoastLevel
	}
	if req.Process != nil {
		updates["process"] = *req.Process
	}
	if req.TastingNotes != nil {
		updates["tasting_notes"] = *req.TastingNotes
	}
	if req.WeightGrams != nil {
		updates["weight_grams"] = *req.WeightGrams
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.TrackQuantity != nil {
		updates["track_quantity"] = *req.TrackQuantity
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Load updated product with relationships
	s.db.Preload("Category").Preload("Vendor").First(&product, product.ID)

	return &product, nil
}

// DeleteProduct soft deletes a product. A non-zero vendorID restricts the
// delete to that vendor's own products.
func (s *Service) DeleteProduct(id, vendorID uint) error {
	query := s.db.Where("id = ?", id)
	if vendorID > 0 {
		query = query.Where("vendor_id = ?", vendorID)
	}
	result := query.Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// UpdateInventory updates product inventory
func (s *Service) UpdateInventory(productID uint, quantity int) error {
	result := s.db.Model(&Product{}).
		Where("id = ? AND track_quantity = ?", productID, true).
		Update("quantity", quantity)

	if result.Error != nil {
		return fmt.Errorf("failed to update inventory: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found or inventory tracking disabled")
	}
	return nil
}

// GetVendorByUser finds the vendor profile owned by a seller account
func (s *Service) GetVendorByUser(userID uint) (*Vendor, error) {
	var vendor Vendor
	result := s.db.Where("user_id = ?", userID).First(&vendor)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("vendor profile not found")
		}
		return nil, fmt.Errorf("failed to retrieve vendor: %w", result.Error)
	}
	return &vendor, nil
}

// GetCategories retrieves all active categories ordered for display
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	err := s.db.Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"updated_at": true,
		"quantity":   true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

// generateSlug generates URL-friendly slug from name
func (s *Service) generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	return slug + "-" + fmt.Sprintf("%d", time.Now().Unix())
}
