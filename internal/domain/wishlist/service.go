// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/cart"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/pkg/events"
	"gorm.io/gorm"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	bus         events.Bus
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, bus events.Bus) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		bus:         bus,
	}
}

// WishlistItemResponse represents a wishlist item with product details
type WishlistItemResponse struct {
	ID           uint             `json:"id"`
	ProductID    uint             `json:"product_id"`
	Product      *product.Product `json:"product,omitempty"`
	AddedAt      time.Time        `json:"added_at"`
	IsAvailable  bool             `json:"is_available"`
	CurrentPrice int64            `json:"current_price"`
}

// WishlistResponse represents a wishlist with items and pagination
type WishlistResponse struct {
	Items      []WishlistItemResponse `json:"items"`
	Count      int                    `json:"count"`
	Pagination Pagination             `json:"pagination"`
	Summary    WishlistSummary        `json:"summary"`
}

// WishlistSummary provides summary information
type WishlistSummary struct {
	TotalItems       int   `json:"total_items"`
	AvailableItems   int   `json:"available_items"`
	UnavailableItems int   `json:"unavailable_items"`
	TotalValue       int64 `json:"total_value"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetWishlist retrieves wishlist for a user with pagination
func (s *Service) GetWishlist(userID uint, page, limit int) (*WishlistResponse, error) {
	var items []WishlistItem
	var total int64

	query := s.db.Where("user_id = ?", userID)

	if err := query.Model(&WishlistItem{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("added_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	wishlistItems := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		wishlistItems[i] = WishlistItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			AddedAt:   item.AddedAt,
		}
	}
	s.loadProductDetails(wishlistItems)

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &WishlistResponse{
		Items: wishlistItems,
		Count: len(wishlistItems),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int(total),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
		Summary: buildSummary(wishlistItems),
	}, nil
}

// AddToWishlist adds a product to the wishlist
func (s *Service) AddToWishlist(userID uint, req *AddToWishlistRequest) (*WishlistItemResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	var existing WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("item already exists in wishlist")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}

	item := WishlistItem{
		UserID:    userID,
		ProductID: req.ProductID,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
	}

	s.bus.Publish(events.Event{Topic: events.TopicWishlistChanged, UserID: userID})

	return &WishlistItemResponse{
		ID:           item.ID,
		ProductID:    item.ProductID,
		Product:      &prod,
		AddedAt:      item.AddedAt,
		IsAvailable:  true,
		CurrentPrice: prod.Price,
	}, nil
}

// RemoveFromWishlist removes a product from the wishlist
func (s *Service) RemoveFromWishlist(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in wishlist")
	}

	s.bus.Publish(events.Event{Topic: events.TopicWishlistChanged, UserID: userID})
	return nil
}

// ClearWishlist removes all items from the wishlist
func (s *Service) ClearWishlist(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&WishlistItem{}).Error; err != nil {
		return err
	}
	s.bus.Publish(events.Event{Topic: events.TopicWishlistChanged, UserID: userID})
	return nil
}

// GetWishlistCount returns the number of items in the wishlist
func (s *Service) GetWishlistCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// IsInWishlist checks if a product is in the user's wishlist
func (s *Service) IsInWishlist(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// MoveToCart moves a product from the wishlist to the cart
func (s *Service) MoveToCart(ctx context.Context, userID, productID uint, quantity int) error {
	inWishlist, err := s.IsInWishlist(userID, productID)
	if err != nil {
		return err
	}
	if !inWishlist {
		return fmt.Errorf("item not found in wishlist")
	}

	_, err = s.cartService.AddToCart(ctx, userID, &cart.AddToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.RemoveFromWishlist(userID, productID)
}

// Private helper methods

func (s *Service) loadProductDetails(items []WishlistItemResponse) {
	for i := range items {
		var prod product.Product
		err := s.db.Preload("Category").Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			items[i].IsAvailable = false
			continue
		}
		items[i].Product = &prod
		items[i].IsAvailable = prod.IsActive && prod.IsInStock()
		items[i].CurrentPrice = prod.Price
	}
}

func buildSummary(items []WishlistItemResponse) WishlistSummary {
	summary := WishlistSummary{TotalItems: len(items)}
	for _, item := range items {
		if item.IsAvailable {
			summary.AvailableItems++
			summary.TotalValue += item.CurrentPrice
		} else {
			summary.UnavailableItems++
		}
	}
	return summary
}
