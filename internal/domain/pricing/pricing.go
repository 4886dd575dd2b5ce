// internal/domain/pricing/pricing.go
package pricing

// LineItem is the minimal shape the pricing primitives need from a cart or
// order line. UnitPrice is the snapshot taken when the item was added; Price
// is the live product price used when no snapshot exists.
type LineItem struct {
	UnitPrice int64
	Price     int64
	Quantity  int
}

// EffectivePrice resolves the unit price for a line: the add-time snapshot
// wins, then the live product price, then zero.
func (l LineItem) EffectivePrice() int64 {
	if l.UnitPrice > 0 {
		return l.UnitPrice
	}
	if l.Price > 0 {
		return l.Price
	}
	return 0
}

// CalculateSubtotal sums effective price times quantity over the items.
// Malformed lines (non-positive quantity, no resolvable price) contribute
// zero rather than erroring; the result is invariant under reordering.
func CalculateSubtotal(items []LineItem) int64 {
	var subtotal int64
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal += item.EffectivePrice() * int64(item.Quantity)
	}
	return subtotal
}

// CalculateDiscount computes a percentage discount on a subtotal. The percent
// is not clamped here; callers are responsible for keeping it in [0,100].
func CalculateDiscount(subtotal int64, discountPercent float64) int64 {
	return int64(float64(subtotal) * discountPercent / 100)
}

// CalculateTotal subtracts a discount from a subtotal. The result can go
// negative when the discount exceeds the subtotal; callers clamp for display
// where negative totals are undesired.
func CalculateTotal(subtotal, discount int64) int64 {
	return subtotal - discount
}
