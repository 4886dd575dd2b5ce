// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem represents a cart line stored in the database. UnitPrice is the
// price snapshot taken when the item was added; the live product price is
// the fallback when the snapshot is zero.
type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	VendorID  uint           `gorm:"not null;index" json:"vendor_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartTotals represents calculated cart totals. Only selected lines count
// toward the subtotal; the rest show up as UnselectedAmount.
type CartTotals struct {
	ItemCount        int   `json:"item_count"`
	SelectedCount    int   `json:"selected_count"`
	TotalQuantity    int   `json:"total_quantity"`
	SubTotal         int64 `json:"sub_total"`
	UnselectedAmount int64 `json:"unselected_amount"`
}
