// internal/domain/voucher/entity.go
package voucher

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexUint is an ID that tolerates both numeric and quoted-string JSON
// representations. Stored voucher data has crossed API boundaries that
// disagree about ID types, so both sides are parsed to numbers before
// comparison.
type FlexUint uint

// UnmarshalJSON accepts 5 and "5" as the same value
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric id %q: %w", s, err)
	}
	*f = FlexUint(n)
	return nil
}

// Voucher represents a vendor-scoped percentage discount rule with an
// optional product allowlist and expiry
type Voucher struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	VendorID           FlexUint   `json:"vendor_id"`
	DiscountPercentage float64    `json:"discount_percentage"`
	MaxDiscount        int64      `json:"max_discount,omitempty"`
	MinPurchase        int64      `json:"min_purchase,omitempty"`
	ProductIDs         []FlexUint `json:"product_ids,omitempty"`
	ExpiryDate         time.Time  `json:"expiry_date"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsValidAt reports whether the voucher is active and not yet expired.
// Expiry is strict: a voucher expiring exactly now is no longer valid.
func (v *Voucher) IsValidAt(now time.Time) bool {
	return v.IsActive && v.ExpiryDate.After(now)
}

// AppliesTo reports whether the voucher covers a product. The vendor must
// match, and when an allowlist is set the product must be in it.
func (v *Voucher) AppliesTo(productID, vendorID uint) bool {
	if uint(v.VendorID) != vendorID {
		return false
	}
	if len(v.ProductIDs) == 0 {
		return true
	}
	for _, id := range v.ProductIDs {
		if uint(id) == productID {
			return true
		}
	}
	return false
}
