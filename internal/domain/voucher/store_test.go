// internal/domain/voucher/store_test.go
package voucher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
)

func newTestStore() (*Store, *kvstore.MemoryStore) {
	kv := kvstore.NewMemoryStore()
	cfg := &config.Config{Voucher: config.VoucherConfig{Namespace: "test"}}
	store := NewStore(kv, cfg)
	return store, kv
}

func TestCreateVoucherRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 30, 0, 250_000_000, time.UTC)
	expiry := time.Date(2026, 6, 15, 23, 59, 59, 500_000_000, time.UTC)
	store.now = func() time.Time { return created }

	voucher, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "BUMI25",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         expiry,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, voucher.ID)
	assert.True(t, voucher.IsActive)

	// Dates survive the store round trip to the millisecond
	all := store.GetAllVouchers(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, expiry.UnixMilli(), all[0].ExpiryDate.UnixMilli())
	assert.Equal(t, created.UnixMilli(), all[0].CreatedAt.UnixMilli())
}

func TestGetVoucherByCodeCaseInsensitive(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "BUMI25",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	found := store.GetVoucherByCode(ctx, "bumi25")
	require.NotNil(t, found)
	assert.Equal(t, "BUMI25", found.Code)

	assert.Nil(t, store.GetVoucherByCode(ctx, "missing"))
}

func TestApplyVoucherToProducts(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "KOPI20",
		VendorID:           5,
		DiscountPercentage: 20,
		ExpiryDate:         time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	products := []product.Product{
		{ID: 1, VendorID: 5, Price: 50000},
		{ID: 2, VendorID: 7, Price: 80000},
	}

	stamped := store.ApplyVoucherToProducts(ctx, products, "KOPI20")
	assert.Equal(t, float64(20), stamped[0].DiscountPercentage)
	assert.Zero(t, stamped[1].DiscountPercentage)
}

func TestApplyVoucherRespectsAllowlist(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "SINGLE10",
		VendorID:           5,
		DiscountPercentage: 10,
		ProductIDs:         []uint{3},
		ExpiryDate:         time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	products := []product.Product{
		{ID: 3, VendorID: 5},
		{ID: 4, VendorID: 5},
	}

	stamped := store.ApplyVoucherToProducts(ctx, products, "SINGLE10")
	assert.Equal(t, float64(10), stamped[0].DiscountPercentage)
	assert.Zero(t, stamped[1].DiscountPercentage)
}

func TestApplyExpiredVoucherIsNoOp(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "OLD25",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	inactive := false
	_, err = store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "PAUSED25",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         time.Now().Add(24 * time.Hour),
		IsActive:           &inactive,
	})
	require.NoError(t, err)

	products := []product.Product{{ID: 1, VendorID: 5}}

	for _, code := range []string{"OLD25", "PAUSED25", "NOSUCHCODE"} {
		stamped := store.ApplyVoucherToProducts(ctx, products, code)
		assert.Zero(t, stamped[0].DiscountPercentage, "code %s should not discount", code)
	}

	assert.False(t, store.IsVoucherValid(ctx, "OLD25"))
	assert.False(t, store.IsVoucherValid(ctx, "PAUSED25"))
}

func TestGetVouchersForProduct(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	expiry := time.Now().Add(24 * time.Hour)

	_, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code: "ALL15", VendorID: 5, DiscountPercentage: 15, ExpiryDate: expiry,
	})
	require.NoError(t, err)
	_, err = store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code: "OTHER20", VendorID: 7, DiscountPercentage: 20, ExpiryDate: expiry,
	})
	require.NoError(t, err)
	_, err = store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code: "EXPIRED", VendorID: 5, DiscountPercentage: 30, ExpiryDate: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	matches := store.GetVouchersForProduct(ctx, 1, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, "ALL15", matches[0].Code)
}

func TestUpdateVoucher(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "BUMI25",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	newPercent := float64(30)
	updated, err := store.UpdateVoucher(ctx, created.ID, &UpdateVoucherRequest{
		DiscountPercentage: &newPercent,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, float64(30), updated.DiscountPercentage)
	assert.Equal(t, "BUMI25", updated.Code)

	// Unknown ID is a no-op, not an error
	missing, err := store.UpdateVoucher(ctx, "does-not-exist", &UpdateVoucherRequest{
		DiscountPercentage: &newPercent,
	})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteVoucher(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created, err := store.CreateVoucher(ctx, &CreateVoucherRequest{
		Code:               "GONE10",
		VendorID:           5,
		DiscountPercentage: 10,
		ExpiryDate:         time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	deleted, err := store.DeleteVoucher(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.GetAllVouchers(ctx))

	deleted, err = store.DeleteVoucher(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetAllVouchersDegradesOnCorruptData(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, kvstore.Key("test", "vouchers"), "{not json", 0))

	assert.Empty(t, store.GetAllVouchers(ctx))
}

func TestFlexUintAcceptsMixedIDTypes(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	// Vendor and product ids stored as strings still match numeric ids
	stored := `[{"id":"42","code":"MIXED5","vendor_id":"5","discount_percentage":5,` +
		`"product_ids":["3"],"expiry_date":"2099-01-01T00:00:00Z","is_active":true,` +
		`"created_at":"2026-01-01T00:00:00Z"}]`
	require.NoError(t, kv.Set(ctx, kvstore.Key("test", "vouchers"), stored, 0))

	matches := store.GetVouchersForProduct(ctx, 3, 5)
	require.Len(t, matches, 1)

	// Numeric ID form matches the stored string ID
	deleted, err := store.DeleteVoucher(ctx, "42")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestIdsMatch(t *testing.T) {
	assert.True(t, idsMatch("42", "42"))
	assert.True(t, idsMatch("042", "42"))
	assert.False(t, idsMatch("42", "43"))
	assert.False(t, idsMatch("abc", "42"))
	assert.True(t, idsMatch("abc", "abc"))
}
