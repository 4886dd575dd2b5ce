// internal/domain/checkout/summary.go
package checkout

import (
	"github.com/your-org/coffee-marketplace/internal/domain/pricing"
)

// SummaryItem is a cart line flattened for checkout display. VendorName is
// already resolved through the display-name fallback chain.
type SummaryItem struct {
	ItemID      uint   `json:"item_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	VendorID    uint   `json:"vendor_id"`
	VendorName  string `json:"vendor_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LinePrice   int64  `json:"line_price"`
	Selected    bool   `json:"selected"`
}

// VendorGroup collects a vendor's selected items for per-seller display
// and per-seller option toggles
type VendorGroup struct {
	VendorID     uint          `json:"vendor_id"`
	VendorName   string        `json:"vendor_name"`
	Items        []SummaryItem `json:"items"`
	Subtotal     int64         `json:"subtotal"`
	EcoPackaging bool          `json:"eco_packaging"`
}

// AppliedPromo represents a promo code or voucher applied at checkout
type AppliedPromo struct {
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage"`
	MaxDiscount        int64   `json:"max_discount,omitempty"`
	MinPurchase        int64   `json:"min_purchase,omitempty"`
	DiscountAmount     int64   `json:"discount_amount"`
	Source             string  `json:"source"` // promo or voucher
	Message            string  `json:"message,omitempty"`
}

// Options are the add-on toggles: eco packaging per vendor, carbon offset
// once per order
type Options struct {
	EcoPackaging map[uint]bool `json:"eco_packaging"`
	CarbonOffset bool          `json:"carbon_offset"`
}

// Fees are the fixed add-on surcharges
type Fees struct {
	EcoPackaging int64
	CarbonOffset int64
}

// Summary is the complete checkout price breakdown
type Summary struct {
	Groups            []VendorGroup `json:"groups"`
	Subtotal          int64         `json:"subtotal"`
	UnselectedAmount  int64         `json:"unselected_amount"`
	Promo             *AppliedPromo `json:"promo,omitempty"`
	Discount          int64         `json:"discount"`
	EcoPackagingTotal int64         `json:"eco_packaging_total"`
	CarbonOffsetFee   int64         `json:"carbon_offset_fee"`
	AddOnTotal        int64         `json:"addon_total"`
	Total             int64         `json:"total"`
	Currency          string        `json:"currency"`
}

// BuildSummary derives the checkout breakdown from cart lines, an applied
// promo, and add-on toggles. Only selected lines count toward the
// subtotal; unselected lines are reported as informational value. The
// discount is recomputed here on every call so deselecting items below a
// promo's minimum purchase drops the discount instead of keeping a stale
// amount.
func BuildSummary(items []SummaryItem, promo *AppliedPromo, opts Options, fees Fees, currency string) Summary {
	summary := Summary{Currency: currency}

	groupIndex := make(map[uint]int)
	for _, item := range items {
		if !item.Selected {
			summary.UnselectedAmount += item.LinePrice
			continue
		}
		summary.Subtotal += item.LinePrice

		idx, ok := groupIndex[item.VendorID]
		if !ok {
			idx = len(summary.Groups)
			groupIndex[item.VendorID] = idx
			summary.Groups = append(summary.Groups, VendorGroup{
				VendorID:     item.VendorID,
				VendorName:   item.VendorName,
				EcoPackaging: opts.EcoPackaging[item.VendorID],
			})
		}
		summary.Groups[idx].Items = append(summary.Groups[idx].Items, item)
		summary.Groups[idx].Subtotal += item.LinePrice
	}

	if promo != nil {
		applied := *promo
		applied.DiscountAmount = computeDiscount(summary.Subtotal, &applied)
		summary.Promo = &applied
		summary.Discount = applied.DiscountAmount
	}

	for _, group := range summary.Groups {
		if group.EcoPackaging {
			summary.EcoPackagingTotal += fees.EcoPackaging
		}
	}
	if opts.CarbonOffset {
		summary.CarbonOffsetFee = fees.CarbonOffset
	}
	summary.AddOnTotal = summary.EcoPackagingTotal + summary.CarbonOffsetFee

	summary.Total = pricing.CalculateTotal(summary.Subtotal, summary.Discount) + summary.AddOnTotal

	return summary
}

// computeDiscount applies the percentage against the selected subtotal,
// honoring the minimum purchase and the optional cap
func computeDiscount(subtotal int64, promo *AppliedPromo) int64 {
	if promo.MinPurchase > 0 && subtotal < promo.MinPurchase {
		return 0
	}
	discount := pricing.CalculateDiscount(subtotal, promo.DiscountPercentage)
	if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
		discount = promo.MaxDiscount
	}
	return discount
}
