// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/cart"
	"github.com/your-org/coffee-marketplace/internal/domain/voucher"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
)

// Service handles checkout business logic. The applied promo and the
// confirmation snapshot live in the key-value store so a reload does not
// silently drop them.
type Service struct {
	store        kvstore.Store
	config       *config.Config
	cartService  *cart.Service
	voucherStore *voucher.Store
}

// NewService creates a new checkout service
func NewService(store kvstore.Store, cfg *config.Config, cartService *cart.Service, voucherStore *voucher.Store) *Service {
	return &Service{
		store:        store,
		config:       cfg,
		cartService:  cartService,
		voucherStore: voucherStore,
	}
}

// promoTable holds the flat, globally defined promo codes, distinct from
// vendor vouchers
var promoTable = map[string]AppliedPromo{
	"KOPI10": {
		Code:               "KOPI10",
		DiscountPercentage: 10,
		Source:             "promo",
	},
	"BARISTA15": {
		Code:               "BARISTA15",
		DiscountPercentage: 15,
		MaxDiscount:        50000,
		MinPurchase:        100000,
		Source:             "promo",
	},
	"WELCOME20": {
		Code:               "WELCOME20",
		DiscountPercentage: 20,
		MaxDiscount:        100000,
		MinPurchase:        200000,
		Source:             "promo",
	},
}

// OptionsRequest represents the add-on toggles sent by the client
type OptionsRequest struct {
	EcoPackaging map[uint]bool `json:"eco_packaging"`
	CarbonOffset bool          `json:"carbon_offset"`
}

// ApplyPromoRequest represents a promo code application
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetSummary builds the checkout breakdown for the user's selected cart
// lines, applying the stored promo and the requested add-on toggles
func (s *Service) GetSummary(ctx context.Context, userID uint, req *OptionsRequest) (*Summary, error) {
	items, err := s.buildSummaryItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := Options{EcoPackaging: map[uint]bool{}}
	if req != nil {
		if req.EcoPackaging != nil {
			opts.EcoPackaging = req.EcoPackaging
		}
		opts.CarbonOffset = req.CarbonOffset
	}

	promo := s.getStoredPromo(ctx, userID)

	summary := BuildSummary(items, promo, opts, s.fees(), s.config.Checkout.Currency)
	return &summary, nil
}

// ApplyPromo validates a code against the promo table first, then the
// voucher store, and persists the result. An invalid code is a validation
// error and leaves no discount applied.
func (s *Service) ApplyPromo(ctx context.Context, userID uint, req *ApplyPromoRequest) (*AppliedPromo, error) {
	items, err := s.buildSummaryItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range items {
		if item.Selected {
			subtotal += item.LinePrice
		}
	}
	if subtotal == 0 {
		return nil, fmt.Errorf("no items selected for checkout")
	}

	promo, err := s.resolvePromo(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if promo.MinPurchase > 0 && subtotal < promo.MinPurchase {
		return nil, fmt.Errorf("minimum purchase of %d required for this code", promo.MinPurchase)
	}

	promo.DiscountAmount = computeDiscount(subtotal, promo)
	promo.Message = fmt.Sprintf("Promo applied! You saved %d", promo.DiscountAmount)

	data, err := json.Marshal(promo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode promo: %w", err)
	}
	if err := s.store.Set(ctx, s.promoKey(userID), string(data), s.config.Checkout.PromoCacheExpiry); err != nil {
		return nil, fmt.Errorf("failed to store applied promo: %w", err)
	}

	return promo, nil
}

// RemovePromo clears the stored discount state
func (s *Service) RemovePromo(ctx context.Context, userID uint) error {
	if err := s.store.Delete(ctx, s.promoKey(userID)); err != nil && err != kvstore.ErrNotFound {
		return fmt.Errorf("failed to remove promo: %w", err)
	}
	return nil
}

// ClearPromo removes the stored promo after an order consumes it
func (s *Service) ClearPromo(ctx context.Context, userID uint) {
	_ = s.store.Delete(ctx, s.promoKey(userID))
}

// SaveSnapshot caches the final breakdown so the confirmation page can
// redisplay totals when the authoritative order lacks them. The key carries
// the owner, so a guessed order number cannot read another user's breakdown.
func (s *Service) SaveSnapshot(ctx context.Context, userID uint, orderNumber string, summary *Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.store.Set(ctx, s.snapshotKey(userID, orderNumber), string(data), s.config.Checkout.OrderCacheExpiry); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the cached breakdown for the user's order, or nil
// when it has expired or was never written
func (s *Service) GetSnapshot(ctx context.Context, userID uint, orderNumber string) *Summary {
	data, err := s.store.Get(ctx, s.snapshotKey(userID, orderNumber))
	if err != nil {
		return nil
	}

	var summary Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil
	}
	return &summary
}

// GetAppliedPromo exposes the stored promo for display
func (s *Service) GetAppliedPromo(ctx context.Context, userID uint) *AppliedPromo {
	return s.getStoredPromo(ctx, userID)
}

// Private helper methods

func (s *Service) buildSummaryItems(ctx context.Context, userID uint) ([]SummaryItem, error) {
	cartResponse, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]SummaryItem, len(cartResponse.Items))
	for i, item := range cartResponse.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}

		vendorName := s.config.Checkout.DefaultVendorName
		if item.Vendor != nil {
			vendorName = item.Vendor.DisplayName(s.config.Checkout.DefaultVendorName)
		}

		items[i] = SummaryItem{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			VendorID:    item.VendorID,
			VendorName:  vendorName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LinePrice:   item.LinePrice,
			Selected:    item.IsSelected,
		}
	}
	return items, nil
}

// resolvePromo checks the promo table before falling back to the voucher
// store. Codes match case-insensitively on both paths.
func (s *Service) resolvePromo(ctx context.Context, code string) (*AppliedPromo, error) {
	if promo, ok := promoTable[strings.ToUpper(code)]; ok {
		return &promo, nil
	}

	v := s.voucherStore.GetVoucherByCode(ctx, code)
	if v == nil {
		return nil, fmt.Errorf("invalid promo code")
	}
	if !s.voucherStore.IsVoucherValid(ctx, code) {
		return nil, fmt.Errorf("promo code has expired or is inactive")
	}

	return &AppliedPromo{
		Code:               v.Code,
		DiscountPercentage: v.DiscountPercentage,
		MaxDiscount:        v.MaxDiscount,
		MinPurchase:        v.MinPurchase,
		Source:             "voucher",
	}, nil
}

func (s *Service) getStoredPromo(ctx context.Context, userID uint) *AppliedPromo {
	data, err := s.store.Get(ctx, s.promoKey(userID))
	if err != nil {
		return nil
	}

	var promo AppliedPromo
	if err := json.Unmarshal([]byte(data), &promo); err != nil {
		return nil
	}
	return &promo
}

func (s *Service) promoKey(userID uint) string {
	return kvstore.Key(s.config.Voucher.Namespace, "promo", strconv.FormatUint(uint64(userID), 10))
}

func (s *Service) snapshotKey(userID uint, orderNumber string) string {
	return kvstore.Key(s.config.Voucher.Namespace, "checkout", "snapshot", strconv.FormatUint(uint64(userID), 10), orderNumber)
}

func (s *Service) fees() Fees {
	return Fees{
		EcoPackaging: s.config.Checkout.EcoPackagingFee,
		CarbonOffset: s.config.Checkout.CarbonOffsetFee,
	}
}
