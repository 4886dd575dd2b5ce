// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment status. Orders are paid from the wallet
// balance at placement, so most orders go straight to paid.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethodBalance is currently the only supported payment method
const PaymentMethodBalance = "balance"

// Order represents the order entity
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus   `gorm:"not null;default:'pending'" json:"status"`
	PaymentMethod string        `gorm:"not null;size:50;default:'balance'" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending'" json:"payment_status"`

	// Financial information, minor units
	SubtotalAmount     int64 `gorm:"not null" json:"subtotal_amount"`
	DiscountAmount     int64 `gorm:"default:0" json:"discount_amount"`
	EcoPackagingAmount int64 `gorm:"default:0" json:"eco_packaging_amount"`
	CarbonOffsetAmount int64 `gorm:"default:0" json:"carbon_offset_amount"`
	TotalAmount        int64 `gorm:"not null" json:"total_amount"`

	Currency  string `gorm:"size:3;default:'IDR'" json:"currency"`
	PromoCode string `gorm:"size:50" json:"promo_code"`
	Notes     string `gorm:"type:text" json:"notes"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents a line in an order. VendorID is denormalized so
// sellers can list the orders containing their products.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	VendorID   uint      `gorm:"not null;index" json:"vendor_id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	VendorName string    `gorm:"size:255" json:"vendor_name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Price      int64     `gorm:"not null" json:"price"`
	TotalPrice int64     `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// Address represents a shipping address embedded in an order
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber generates a unique order number
func GenerateOrderNumber(t time.Time, sequence uint) string {
	return fmt.Sprintf("ORD-%s-%05d", t.Format("20060102"), sequence)
}

// AddOnAmount returns the combined add-on surcharges
func (o *Order) AddOnAmount() int64 {
	return o.EcoPackagingAmount + o.CarbonOffsetAmount
}

// CanBeCancelled checks if the order can still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// IsCompleted checks if the order has reached a terminal success state
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusDelivered
}
