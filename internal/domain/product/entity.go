// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a coffee listing offered by a vendor
type Product struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SKU          string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name         string `gorm:"not null;size:255" json:"name"`
	Slug         string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	Price        int64  `gorm:"not null" json:"price"` // Amount in store currency
	ComparePrice int64  `json:"compare_price"`         // Original price for markdowns
	VendorID     uint   `gorm:"not null;index" json:"vendor_id"`
	CategoryID   uint   `gorm:"not null;index" json:"category_id"`

	// Coffee metadata
	Origin       string  `gorm:"size:100" json:"origin"`
	RoastLevel   string  `gorm:"size:50" json:"roast_level"` // light, medium, dark
	Process      string  `gorm:"size:50" json:"process"`     // washed, natural, honey
	TastingNotes string  `gorm:"size:500" json:"tasting_notes"`
	WeightGrams  float64 `json:"weight_grams"`

	IsActive      bool `gorm:"default:true" json:"is_active"`
	IsFeatured    bool `gorm:"default:false" json:"is_featured"`
	TrackQuantity bool `gorm:"default:true" json:"track_quantity"`
	Quantity      int  `gorm:"default:0" json:"quantity"`

	// DiscountPercentage is a transient field stamped by voucher application;
	// it is never persisted.
	DiscountPercentage float64 `gorm:"-" json:"discount_percentage,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Vendor   Vendor          `gorm:"foreignKey:VendorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"vendor"`
	Category Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Reviews  []ProductReview `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviews,omitempty"`
}

// Vendor represents a seller on the marketplace
type Vendor struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;uniqueIndex" json:"user_id"` // Owning seller account
	Name        string         `gorm:"size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	City        string         `gorm:"size:100" json:"city"`
	Logo        string         `gorm:"size:500" json:"logo"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:VendorID" json:"products,omitempty"`
}

// Category represents product categories (single origin, blends, equipment)
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductReview represents customer feedback on a product
type ProductReview struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	OrderID   *uint          `gorm:"index" json:"order_id"` // Set for verified purchases
	Rating    int            `gorm:"not null" json:"rating"`
	Title     string         `gorm:"size:255" json:"title"`
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (Vendor) TableName() string        { return "vendors" }
func (Category) TableName() string      { return "categories" }
func (ProductReview) TableName() string { return "product_reviews" }

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Quantity > 0 || !p.TrackQuantity
}

// DisplayName resolves the seller label shown for a vendor, with an explicit
// priority order: vendor name, then city, then the provided default label.
// Upstream vendor metadata can be incomplete; the chain makes that tolerable.
func (v *Vendor) DisplayName(defaultName string) string {
	if v == nil {
		return defaultName
	}
	if v.Name != "" {
		return v.Name
	}
	if v.City != "" {
		return v.City
	}
	return defaultName
}
