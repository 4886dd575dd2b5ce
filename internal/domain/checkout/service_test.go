// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/voucher"
	"github.com/your-org/coffee-marketplace/internal/pkg/kvstore"
)

func newPromoService(t *testing.T) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.Voucher.Namespace = "beanmarket"
	cfg.Checkout.Currency = "IDR"
	cfg.Checkout.PromoCacheExpiry = time.Hour
	cfg.Checkout.OrderCacheExpiry = time.Hour

	kv := kvstore.NewMemoryStore()
	return &Service{
		store:        kv,
		config:       cfg,
		voucherStore: voucher.NewStore(kv, cfg),
	}
}

func TestResolvePromoTableIsCaseInsensitive(t *testing.T) {
	svc := newPromoService(t)
	ctx := context.Background()

	for _, code := range []string{"KOPI10", "kopi10", "Kopi10"} {
		promo, err := svc.resolvePromo(ctx, code)
		require.NoError(t, err, code)
		assert.Equal(t, "KOPI10", promo.Code)
		assert.Equal(t, float64(10), promo.DiscountPercentage)
		assert.Equal(t, "promo", promo.Source)
	}
}

func TestResolvePromoFallsBackToVoucherStore(t *testing.T) {
	svc := newPromoService(t)
	ctx := context.Background()

	_, err := svc.voucherStore.CreateVoucher(ctx, &voucher.CreateVoucherRequest{
		Code:               "BREWDEAL",
		VendorID:           5,
		DiscountPercentage: 25,
		ExpiryDate:         time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	// Voucher lookup is case-insensitive too
	promo, err := svc.resolvePromo(ctx, "brewdeal")
	require.NoError(t, err)
	assert.Equal(t, "BREWDEAL", promo.Code)
	assert.Equal(t, "voucher", promo.Source)
}

func TestResolvePromoUnknownCode(t *testing.T) {
	svc := newPromoService(t)

	_, err := svc.resolvePromo(context.Background(), "NOSUCHCODE")
	assert.ErrorContains(t, err, "invalid promo code")
}

func TestSnapshotIsScopedToOwner(t *testing.T) {
	svc := newPromoService(t)
	ctx := context.Background()

	summary := Summary{Subtotal: 150000, Total: 140000, Currency: "IDR"}
	require.NoError(t, svc.SaveSnapshot(ctx, 7, "ORD-20260314-00042", &summary))

	got := svc.GetSnapshot(ctx, 7, "ORD-20260314-00042")
	require.NotNil(t, got)
	assert.Equal(t, int64(140000), got.Total)

	// Another user guessing the order number reads nothing
	assert.Nil(t, svc.GetSnapshot(ctx, 8, "ORD-20260314-00042"))
}
