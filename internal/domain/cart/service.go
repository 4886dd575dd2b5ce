// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/pricing"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/pkg/events"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	store  kvstore.Store
	config *config.Config
	bus    events.Bus
}

// NewService creates a new cart service
func NewService(db *gorm.DB, store kvstore.Store, cfg *config.Config, bus events.Bus) *Service {
	return &Service{
		db:     db,
		store:  store,
		config: cfg,
		bus:    bus,
	}
}

// CartItemResponse represents a cart line with product details
type CartItemResponse struct {
	ID         uint             `json:"id"`
	ProductID  uint             `json:"product_id"`
	VendorID   uint             `json:"vendor_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  int64            `json:"unit_price"`
	LinePrice  int64            `json:"line_price"`
	IsSelected bool             `json:"is_selected"`
	Product    *product.Product `json:"product,omitempty"`
	Vendor     *product.Vendor  `json:"vendor,omitempty"`
	AddedAt    time.Time        `json:"added_at"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	UserID    uint               `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request. Quantity never
// goes below one; use the remove endpoint to take a line out.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart retrieves the cart with selection state and totals
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	items, err := s.loadItems(userID)
	if err != nil {
		return nil, err
	}

	selected, err := s.loadSelection(ctx, userID, itemIDs(items))
	if err != nil {
		return nil, err
	}

	responses := make([]CartItemResponse, len(items))
	updatedAt := time.Now().UTC()
	for i, item := range items {
		line := pricing.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
		if item.Product != nil {
			line.Price = item.Product.Price
		}
		unit := line.EffectivePrice()

		responses[i] = CartItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			VendorID:   item.VendorID,
			Quantity:   item.Quantity,
			UnitPrice:  unit,
			LinePrice:  unit * int64(item.Quantity),
			IsSelected: IsSelected(selected, item.ID),
			Product:    item.Product,
			Vendor:     item.Vendor,
			AddedAt:    item.CreatedAt,
		}
		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	return &CartResponse{
		UserID:    userID,
		Items:     responses,
		Totals:    calculateTotals(responses),
		UpdatedAt: updatedAt,
	}, nil
}

// AddToCart adds an item to the cart or bumps its quantity. New lines join
// the current selection.
func (s *Service) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*CartResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	if prod.TrackQuantity && prod.Quantity < req.Quantity {
		return nil, fmt.Errorf("insufficient stock. Available: %d", prod.Quantity)
	}

	var existing CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			VendorID:  prod.VendorID,
			Quantity:  req.Quantity,
			UnitPrice: prod.Price,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add item to cart: %w", err)
		}
		if err := s.selectNewItem(ctx, userID, item.ID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	} else {
		newQuantity := existing.Quantity + req.Quantity
		if prod.TrackQuantity && prod.Quantity < newQuantity {
			return nil, fmt.Errorf("insufficient stock for total quantity. Available: %d", prod.Quantity)
		}
		existing.Quantity = newQuantity
		existing.UnitPrice = prod.Price
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets the quantity of a cart line. The write is
// persisted before any derived state changes so a failure leaves the cart
// untouched.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	var item CartItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return nil, fmt.Errorf("cart item not found")
	}

	var prod product.Product
	if err := s.db.Where("id = ?", item.ProductID).First(&prod).Error; err == nil {
		if prod.TrackQuantity && prod.Quantity < req.Quantity {
			return nil, fmt.Errorf("insufficient stock. Available: %d", prod.Quantity)
		}
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update quantity: %w", err)
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a cart line and drops it from the selection
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) (*CartResponse, error) {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("cart item not found")
	}

	selected, hasStored, err := s.readStoredSelection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hasStored {
		if err := s.saveSelection(ctx, userID, RemoveFromSelection(selected, itemID)); err != nil {
			return nil, err
		}
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// ClearCart removes all lines and the stored selection
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if err := s.store.Delete(ctx, s.selectionKey(userID)); err != nil && err != kvstore.ErrNotFound {
		return fmt.Errorf("failed to clear selection: %w", err)
	}

	s.publishChanged(userID)
	return nil
}

// ToggleItemSelection flips whether a cart line is included in checkout
func (s *Service) ToggleItemSelection(ctx context.Context, userID, itemID uint) (*CartResponse, error) {
	items, err := s.loadItems(userID)
	if err != nil {
		return nil, err
	}
	if !containsItem(items, itemID) {
		return nil, fmt.Errorf("cart item not found")
	}

	selected, err := s.loadSelection(ctx, userID, itemIDs(items))
	if err != nil {
		return nil, err
	}
	if err := s.saveSelection(ctx, userID, ToggleSelection(selected, itemID)); err != nil {
		return nil, err
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// SelectAllItems marks every cart line as selected
func (s *Service) SelectAllItems(ctx context.Context, userID uint) (*CartResponse, error) {
	items, err := s.loadItems(userID)
	if err != nil {
		return nil, err
	}
	if err := s.saveSelection(ctx, userID, itemIDs(items)); err != nil {
		return nil, err
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// ClearAllSelections deselects every cart line without touching the lines
func (s *Service) ClearAllSelections(ctx context.Context, userID uint) (*CartResponse, error) {
	if err := s.saveSelection(ctx, userID, []uint{}); err != nil {
		return nil, err
	}

	s.publishChanged(userID)
	return s.GetCart(ctx, userID)
}

// GetSelectedItems returns only the lines included in checkout
func (s *Service) GetSelectedItems(ctx context.Context, userID uint) ([]CartItemResponse, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	selected := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.IsSelected {
			selected = append(selected, item)
		}
	}
	return selected, nil
}

// GetCartItemCount returns the total quantity across all lines
func (s *Service) GetCartItemCount(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := s.db.Model(&CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ?", userID).
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return int(count), nil
}

// Private helper methods

type loadedItem struct {
	CartItem
	Product *product.Product
	Vendor  *product.Vendor
}

func (s *Service) loadItems(userID uint) ([]loadedItem, error) {
	var dbItems []CartItem
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&dbItems).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	items := make([]loadedItem, len(dbItems))
	for i, item := range dbItems {
		items[i] = loadedItem{CartItem: item}

		var prod product.Product
		if err := s.db.Where("id = ?", item.ProductID).First(&prod).Error; err == nil {
			items[i].Product = &prod
		}
		var vendor product.Vendor
		if err := s.db.Where("id = ?", item.VendorID).First(&vendor).Error; err == nil {
			items[i].Vendor = &vendor
		}
	}
	return items, nil
}

func (s *Service) selectionKey(userID uint) string {
	return kvstore.Key(s.config.Voucher.Namespace, "cart", "selected", strconv.FormatUint(uint64(userID), 10))
}

func (s *Service) readStoredSelection(ctx context.Context, userID uint) ([]uint, bool, error) {
	data, err := s.store.Get(ctx, s.selectionKey(userID))
	if err == kvstore.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read selection: %w", err)
	}

	var selected []uint
	if err := json.Unmarshal([]byte(data), &selected); err != nil {
		// Treat a corrupt selection as absent so the cart stays usable
		return nil, false, nil
	}
	return selected, true, nil
}

func (s *Service) loadSelection(ctx context.Context, userID uint, currentIDs []uint) ([]uint, error) {
	stored, hasStored, err := s.readStoredSelection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ResolveSelection(stored, hasStored, currentIDs), nil
}

func (s *Service) saveSelection(ctx context.Context, userID uint, selected []uint) error {
	data, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	if err := s.store.Set(ctx, s.selectionKey(userID), string(data), 0); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// selectNewItem adds a freshly created line to a stored selection. Carts
// without a stored selection already select everything.
func (s *Service) selectNewItem(ctx context.Context, userID, itemID uint) error {
	selected, hasStored, err := s.readStoredSelection(ctx, userID)
	if err != nil {
		return err
	}
	if !hasStored {
		return nil
	}
	return s.saveSelection(ctx, userID, append(selected, itemID))
}

func (s *Service) publishChanged(userID uint) {
	s.bus.Publish(events.Event{Topic: events.TopicCartChanged, UserID: userID})
}

func itemIDs(items []loadedItem) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func containsItem(items []loadedItem, itemID uint) bool {
	for _, item := range items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

func calculateTotals(items []CartItemResponse) CartTotals {
	var totals CartTotals
	totals.ItemCount = len(items)

	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		if item.IsSelected {
			totals.SelectedCount++
			totals.SubTotal += item.LinePrice
		} else {
			totals.UnselectedAmount += item.LinePrice
		}
	}
	return totals
}
