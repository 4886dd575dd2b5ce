// internal/domain/voucher/store.go
package voucher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
)

// Store persists vouchers as a single JSON document in the key-value
// backend. Read failures degrade to an empty collection instead of
// surfacing to callers; checkout keeps working with no discounts rather
// than erroring out.
type Store struct {
	kv        kvstore.Store
	namespace string

	// Injected for tests
	now   func() time.Time
	newID func(t time.Time) string
}

// NewStore creates a voucher store on top of a key-value backend
func NewStore(kv kvstore.Store, cfg *config.Config) *Store {
	return &Store{
		kv:        kv,
		namespace: cfg.Voucher.Namespace,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     generateID,
	}
}

// CreateVoucherRequest represents voucher creation data
type CreateVoucherRequest struct {
	Code               string    `json:"code" binding:"required"`
	VendorID           uint      `json:"vendor_id" binding:"required"`
	DiscountPercentage float64   `json:"discount_percentage" binding:"required,gt=0,lte=100"`
	MaxDiscount        int64     `json:"max_discount" binding:"omitempty,min=0"`
	MinPurchase        int64     `json:"min_purchase" binding:"omitempty,min=0"`
	ProductIDs         []uint    `json:"product_ids"`
	ExpiryDate         time.Time `json:"expiry_date" binding:"required"`
	IsActive           *bool     `json:"is_active"`
}

// UpdateVoucherRequest represents a partial voucher update
type UpdateVoucherRequest struct {
	Code               *string    `json:"code"`
	DiscountPercentage *float64   `json:"discount_percentage" binding:"omitempty,gt=0,lte=100"`
	MaxDiscount        *int64     `json:"max_discount" binding:"omitempty,min=0"`
	MinPurchase        *int64     `json:"min_purchase" binding:"omitempty,min=0"`
	ProductIDs         *[]uint    `json:"product_ids"`
	ExpiryDate         *time.Time `json:"expiry_date"`
	IsActive           *bool      `json:"is_active"`
}

// GetAllVouchers returns every stored voucher. A missing or unparseable
// document yields an empty slice.
func (s *Store) GetAllVouchers(ctx context.Context) []Voucher {
	data, err := s.kv.Get(ctx, s.key())
	if err == kvstore.ErrNotFound {
		return []Voucher{}
	}
	if err != nil {
		logrus.WithError(err).Warn("failed to read voucher store")
		return []Voucher{}
	}

	var vouchers []Voucher
	if err := json.Unmarshal([]byte(data), &vouchers); err != nil {
		logrus.WithError(err).Warn("failed to parse stored vouchers")
		return []Voucher{}
	}
	return vouchers
}

// CreateVoucher assigns a generated ID and creation timestamp, then
// appends and persists
func (s *Store) CreateVoucher(ctx context.Context, req *CreateVoucherRequest) (*Voucher, error) {
	now := s.now()

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	productIDs := make([]FlexUint, len(req.ProductIDs))
	for i, id := range req.ProductIDs {
		productIDs[i] = FlexUint(id)
	}

	voucher := Voucher{
		ID:                 s.newID(now),
		Code:               req.Code,
		VendorID:           FlexUint(req.VendorID),
		DiscountPercentage: req.DiscountPercentage,
		MaxDiscount:        req.MaxDiscount,
		MinPurchase:        req.MinPurchase,
		ProductIDs:         productIDs,
		ExpiryDate:         req.ExpiryDate,
		IsActive:           isActive,
		CreatedAt:          now,
	}

	vouchers := append(s.GetAllVouchers(ctx), voucher)
	if err := s.save(ctx, vouchers); err != nil {
		return nil, err
	}
	return &voucher, nil
}

// UpdateVoucher merges partial fields onto an existing record. Returns nil
// without error when the ID is unknown.
func (s *Store) UpdateVoucher(ctx context.Context, id string, req *UpdateVoucherRequest) (*Voucher, error) {
	vouchers := s.GetAllVouchers(ctx)

	for i := range vouchers {
		if !idsMatch(vouchers[i].ID, id) {
			continue
		}

		if req.Code != nil {
			vouchers[i].Code = *req.Code
		}
		if req.DiscountPercentage != nil {
			vouchers[i].DiscountPercentage = *req.DiscountPercentage
		}
		if req.MaxDiscount != nil {
			vouchers[i].MaxDiscount = *req.MaxDiscount
		}
		if req.MinPurchase != nil {
			vouchers[i].MinPurchase = *req.MinPurchase
		}
		if req.ProductIDs != nil {
			ids := make([]FlexUint, len(*req.ProductIDs))
			for j, pid := range *req.ProductIDs {
				ids[j] = FlexUint(pid)
			}
			vouchers[i].ProductIDs = ids
		}
		if req.ExpiryDate != nil {
			vouchers[i].ExpiryDate = *req.ExpiryDate
		}
		if req.IsActive != nil {
			vouchers[i].IsActive = *req.IsActive
		}

		if err := s.save(ctx, vouchers); err != nil {
			return nil, err
		}
		return &vouchers[i], nil
	}

	return nil, nil
}

// DeleteVoucher removes by ID. Returns false when the ID is unknown.
func (s *Store) DeleteVoucher(ctx context.Context, id string) (bool, error) {
	vouchers := s.GetAllVouchers(ctx)

	for i := range vouchers {
		if idsMatch(vouchers[i].ID, id) {
			vouchers = append(vouchers[:i], vouchers[i+1:]...)
			if err := s.save(ctx, vouchers); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// GetVoucherByCode finds a voucher by code, case-insensitively. Returns
// nil when absent.
func (s *Store) GetVoucherByCode(ctx context.Context, code string) *Voucher {
	for _, v := range s.GetAllVouchers(ctx) {
		if strings.EqualFold(v.Code, code) {
			voucher := v
			return &voucher
		}
	}
	return nil
}

// IsVoucherValid resolves a code and checks active status and expiry
func (s *Store) IsVoucherValid(ctx context.Context, code string) bool {
	voucher := s.GetVoucherByCode(ctx, code)
	if voucher == nil {
		return false
	}
	return voucher.IsValidAt(s.now())
}

// ApplyVoucherToProducts stamps the voucher's discount percentage on
// every product it covers. An unknown, expired, or inactive code leaves
// all products unchanged.
func (s *Store) ApplyVoucherToProducts(ctx context.Context, products []product.Product, code string) []product.Product {
	voucher := s.GetVoucherByCode(ctx, code)
	if voucher == nil || !voucher.IsValidAt(s.now()) {
		return products
	}

	result := make([]product.Product, len(products))
	for i, p := range products {
		if voucher.AppliesTo(p.ID, p.VendorID) {
			p.DiscountPercentage = voucher.DiscountPercentage
		}
		result[i] = p
	}
	return result
}

// GetVouchersForProduct returns valid vouchers covering a product
func (s *Store) GetVouchersForProduct(ctx context.Context, productID, vendorID uint) []Voucher {
	now := s.now()

	var matches []Voucher
	for _, v := range s.GetAllVouchers(ctx) {
		if v.IsValidAt(now) && v.AppliesTo(productID, vendorID) {
			matches = append(matches, v)
		}
	}
	return matches
}

// GetVouchersForVendor returns every voucher owned by a vendor, valid or
// not, for the seller dashboard
func (s *Store) GetVouchersForVendor(ctx context.Context, vendorID uint) []Voucher {
	var matches []Voucher
	for _, v := range s.GetAllVouchers(ctx) {
		if uint(v.VendorID) == vendorID {
			matches = append(matches, v)
		}
	}
	return matches
}

func (s *Store) key() string {
	return kvstore.Key(s.namespace, "vouchers")
}

func (s *Store) save(ctx context.Context, vouchers []Voucher) error {
	data, err := json.Marshal(vouchers)
	if err != nil {
		return fmt.Errorf("failed to encode vouchers: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(), string(data), 0); err != nil {
		return fmt.Errorf("failed to persist vouchers: %w", err)
	}
	return nil
}

// generateID builds a unique voucher ID from the creation time and a
// random suffix
func generateID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.New().String()[:8])
}

// idsMatch compares voucher IDs, treating purely numeric IDs as equal to
// their string forms
func idsMatch(a, b string) bool {
	if a == b {
		return true
	}
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	return errA == nil && errB == nil && na == nb
}
