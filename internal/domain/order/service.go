// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/cart"
	"github.com/your-org/coffee-marketplace/internal/domain/checkout"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/pkg/events"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	cartService     *cart.Service
	checkoutService *checkout.Service
	userService     *user.Service
	addressService  *user.AddressService
	bus             events.Bus
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, checkoutService *checkout.Service, userService *user.Service, addressService *user.AddressService, bus events.Bus) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		cartService:     cartService,
		checkoutService: checkoutService,
		userService:     userService,
		addressService:  addressService,
		bus:             bus,
	}
}

// PlaceOrderRequest represents order creation data. The order covers the
// selected cart lines, priced by the checkout summary, and is paid from
// the wallet balance.
type PlaceOrderRequest struct {
	ShippingAddressID uint                    `json:"shipping_address_id" binding:"required"`
	Options           checkout.OptionsRequest `json:"options"`
	Notes             string                  `json:"notes,omitempty"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    uint        `form:"user_id"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
	DateFrom  string      `form:"date_from"`
	DateTo    string      `form:"date_to"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
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

// Confirmation is the display breakdown for the confirmation page. The
// order record is authoritative; the cached checkout snapshot fills in
// when the order lacks breakdown data.
type Confirmation struct {
	Order    *Order            `json:"order"`
	Summary  *checkout.Summary `json:"summary,omitempty"`
	FromSnap bool              `json:"from_cached_snapshot"`
}

// PlaceOrder turns the selected cart lines into an order. The whole flow
// runs in one transaction: stock is checked and reserved, the wallet is
// debited, the purchased lines leave the cart. Any failure rolls
// everything back.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*Order, error) {
	summary, err := s.checkoutService.GetSummary(ctx, userID, &req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout summary: %w", err)
	}

	if len(summary.Groups) == 0 {
		return nil, fmt.Errorf("no items selected for checkout")
	}
	if summary.Total < 0 {
		return nil, fmt.Errorf("order total cannot be negative")
	}

	address, err := s.addressService.GetAddress(userID, req.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	if err := s.addressService.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("invalid shipping address: %w", err)
	}

	var created Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		promoCode := ""
		if summary.Promo != nil {
			promoCode = summary.Promo.Code
		}

		created = Order{
			UserID:             userID,
			Status:             OrderStatusPending,
			PaymentMethod:      PaymentMethodBalance,
			PaymentStatus:      PaymentStatusPaid,
			SubtotalAmount:     summary.Subtotal,
			DiscountAmount:     summary.Discount,
			EcoPackagingAmount: summary.EcoPackagingTotal,
			CarbonOffsetAmount: summary.CarbonOffsetFee,
			TotalAmount:        summary.Total,
			Currency:           summary.Currency,
			PromoCode:          promoCode,
			Notes:              req.Notes,
			ShippingAddress: Address{
				FirstName:    address.FirstName,
				LastName:     address.LastName,
				AddressLine1: address.AddressLine1,
				AddressLine2: address.AddressLine2,
				City:         address.City,
				State:        address.State,
				PostalCode:   address.PostalCode,
				Country:      address.Country,
				Phone:        address.Phone,
			},
		}

		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		created.OrderNumber = GenerateOrderNumber(time.Now().UTC(), created.ID)
		if err := tx.Model(&created).Update("order_number", created.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to assign order number: %w", err)
		}

		var purchasedItemIDs []uint
		for _, group := range summary.Groups {
			for _, item := range group.Items {
				orderItem := OrderItem{
					OrderID:    created.ID,
					ProductID:  item.ProductID,
					VendorID:   item.VendorID,
					Name:       item.ProductName,
					VendorName: item.VendorName,
					Quantity:   item.Quantity,
					Price:      item.UnitPrice,
					TotalPrice: item.LinePrice,
				}
				if err := tx.Create(&orderItem).Error; err != nil {
					return fmt.Errorf("failed to create order item: %w", err)
				}

				if err := s.reserveStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				purchasedItemIDs = append(purchasedItemIDs, item.ItemID)
			}
		}

		// Pay from the wallet; rolls the order back on insufficient balance.
		// A fully discounted order owes nothing, so there is no debit to make.
		if summary.Total > 0 {
			if err := s.userService.DebitBalance(tx, userID, summary.Total, created.OrderNumber); err != nil {
				return err
			}
		}

		// Purchased lines leave the cart; unselected lines stay
		if err := tx.Where("user_id = ? AND id IN ?", userID, purchasedItemIDs).
			Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear purchased cart items: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   created.ID,
			Status:    OrderStatusPending,
			Comment:   "Order created",
			CreatedBy: userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.checkoutService.ClearPromo(ctx, userID)
	if err := s.checkoutService.SaveSnapshot(ctx, userID, created.OrderNumber, summary); err != nil {
		// The order is committed; a failed snapshot only degrades the
		// confirmation page fallback
		logrus.WithError(err).WithField("order_number", created.OrderNumber).
			Warn("Failed to cache checkout snapshot")
	}

	s.bus.Publish(events.Event{Topic: events.TopicCartChanged, UserID: userID})
	s.userService.NotifyBalanceChanged(userID)

	if err := s.db.Preload("Items").Preload("StatusHistory").First(&created, created.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load complete order: %w", err)
	}

	s.bus.Publish(events.Event{Topic: events.TopicOrderPlaced, UserID: userID, Payload: &created})

	return &created, nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderResponse, error) {
	return s.GetOrders(&OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
}

// GetOrder retrieves a single order scoped to its owner
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &order, nil
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(userID uint, orderNumber string) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&order)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &order, nil
}

// GetConfirmation builds the confirmation page breakdown. The order is the
// source of truth; the cached snapshot fills in only when the order has no
// breakdown.
func (s *Service) GetConfirmation(ctx context.Context, userID uint, orderNumber string) (*Confirmation, error) {
	order, err := s.GetOrderByNumber(userID, orderNumber)
	if err != nil {
		return nil, err
	}

	confirmation := &Confirmation{Order: order}
	if order.TotalAmount == 0 && order.SubtotalAmount == 0 {
		if snap := s.checkoutService.GetSnapshot(ctx, userID, orderNumber); snap != nil {
			confirmation.Summary = snap
			confirmation.FromSnap = true
		}
	}
	return confirmation, nil
}

// GetVendorOrders lists orders containing a vendor's products
func (s *Service) GetVendorOrders(vendorID uint, page, limit int) (*OrderResponse, error) {
	var orders []Order
	var total int64

	subquery := s.db.Model(&OrderItem{}).
		Select("DISTINCT order_id").
		Where("vendor_id = ?", vendorID)

	query := s.db.Model(&Order{}).
		Preload("Items", "vendor_id = ?", vendorID).
		Where("id IN (?)", subquery)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count vendor orders: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve vendor orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// UpdateOrderStatus updates order status with transition validation
func (s *Service) UpdateOrderStatus(orderID uint, status OrderStatus, comment string, updatedBy uint) error {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !s.isValidStatusTransition(order.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", order.Status, status)
	}

	now := time.Now().UTC()
	if err := s.db.Model(&order).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: updatedBy,
		CreatedAt: now,
	}
	if err := s.db.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}

	order.Status = status
	s.bus.Publish(events.Event{
		Topic:   events.TopicOrderStatus,
		UserID:  order.UserID,
		Payload: &StatusChange{Order: &order, Comment: comment},
	})
	return nil
}

// StatusChange is the payload published when an order moves to a new status
type StatusChange struct {
	Order   *Order
	Comment string
}

// CancelOrder cancels an order, restores stock, and refunds the wallet
func (s *Service) CancelOrder(userID, orderID uint, reason string) error {
	var order Order
	if err := s.db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		return fmt.Errorf("order not found")
	}

	if !order.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in current status: %s", order.Status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		for _, item := range items {
			tx.Model(&product.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity))
		}

		if order.PaymentStatus == PaymentStatusPaid {
			if err := s.userService.CreditBalance(tx, userID, order.TotalAmount, "refund", order.OrderNumber); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":         OrderStatusCancelled,
			"payment_status": PaymentStatusRefunded,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   orderID,
			Status:    OrderStatusCancelled,
			Comment:   fmt.Sprintf("Order cancelled: %s", reason),
			CreatedBy: userID,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return err
	}

	s.userService.NotifyBalanceChanged(userID)
	return nil
}

// Private helper methods

func (s *Service) reserveStock(tx *gorm.DB, productID uint, quantity int) error {
	var prod product.Product
	if err := tx.Where("id = ?", productID).First(&prod).Error; err != nil {
		return fmt.Errorf("product %d not found", productID)
	}
	if !prod.IsActive {
		return fmt.Errorf("product '%s' is no longer available", prod.Name)
	}
	if !prod.TrackQuantity {
		return nil
	}
	if prod.Quantity < quantity {
		return fmt.Errorf("insufficient stock for '%s'. Available: %d, Requested: %d",
			prod.Name, prod.Quantity, quantity)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("insufficient stock for '%s'", prod.Name)
	}
	return nil
}

func (s *Service) isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending: {
			OrderStatusConfirmed,
			OrderStatusCancelled,
		},
		OrderStatusConfirmed: {
			OrderStatusProcessing,
			OrderStatusCancelled,
		},
		OrderStatusProcessing: {
			OrderStatusShipped,
		},
		OrderStatusShipped: {
			OrderStatusDelivered,
		},
		OrderStatusDelivered: {
			OrderStatusCompleted,
		},
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
