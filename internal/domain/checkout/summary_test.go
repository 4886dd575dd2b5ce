// internal/domain/checkout/summary_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFees = Fees{EcoPackaging: 5000, CarbonOffset: 2000}

func TestBuildSummaryEndToEnd(t *testing.T) {
	// Two selected items from one seller, 10% promo, eco packaging on:
	// 150000 - 15000 + 5000 = 140000
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, VendorName: "Toraja Highlands", LinePrice: 100000, Quantity: 2, Selected: true},
		{ItemID: 2, VendorID: 5, VendorName: "Toraja Highlands", LinePrice: 50000, Quantity: 1, Selected: true},
	}
	promo := &AppliedPromo{Code: "KOPI10", DiscountPercentage: 10, Source: "promo"}
	opts := Options{EcoPackaging: map[uint]bool{5: true}}

	summary := BuildSummary(items, promo, opts, testFees, "IDR")

	assert.Equal(t, int64(150000), summary.Subtotal)
	assert.Equal(t, int64(15000), summary.Discount)
	assert.Equal(t, int64(5000), summary.EcoPackagingTotal)
	assert.Equal(t, int64(140000), summary.Total)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, "Toraja Highlands", summary.Groups[0].VendorName)
}

func TestBuildSummaryUnselectedItems(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 80000, Selected: true},
		{ItemID: 2, VendorID: 7, LinePrice: 30000, Selected: false},
	}

	summary := BuildSummary(items, nil, Options{}, testFees, "IDR")

	assert.Equal(t, int64(80000), summary.Subtotal)
	assert.Equal(t, int64(30000), summary.UnselectedAmount)
	assert.Equal(t, int64(80000), summary.Total)
	// Unselected items do not create vendor groups
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, uint(5), summary.Groups[0].VendorID)
}

func TestBuildSummaryGroupsByVendor(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, VendorName: "Gayo Estate", LinePrice: 40000, Selected: true},
		{ItemID: 2, VendorID: 7, VendorName: "Kintamani Co-op", LinePrice: 60000, Selected: true},
		{ItemID: 3, VendorID: 5, VendorName: "Gayo Estate", LinePrice: 20000, Selected: true},
	}

	summary := BuildSummary(items, nil, Options{}, testFees, "IDR")

	require.Len(t, summary.Groups, 2)
	assert.Equal(t, int64(60000), summary.Groups[0].Subtotal)
	assert.Len(t, summary.Groups[0].Items, 2)
	assert.Equal(t, int64(60000), summary.Groups[1].Subtotal)
}

func TestBuildSummaryEcoPackagingPerVendorGroup(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 40000, Selected: true},
		{ItemID: 2, VendorID: 7, LinePrice: 60000, Selected: true},
	}
	opts := Options{
		EcoPackaging: map[uint]bool{5: true, 7: true},
		CarbonOffset: true,
	}

	summary := BuildSummary(items, nil, opts, testFees, "IDR")

	assert.Equal(t, int64(10000), summary.EcoPackagingTotal)
	assert.Equal(t, int64(2000), summary.CarbonOffsetFee)
	assert.Equal(t, int64(12000), summary.AddOnTotal)
	assert.Equal(t, int64(112000), summary.Total)
}

func TestBuildSummaryDiscountCap(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 1000000, Selected: true},
	}
	promo := &AppliedPromo{Code: "BIG20", DiscountPercentage: 20, MaxDiscount: 50000}

	summary := BuildSummary(items, promo, Options{}, testFees, "IDR")

	assert.Equal(t, int64(50000), summary.Discount)
	assert.Equal(t, int64(950000), summary.Total)
}

func TestBuildSummaryMinPurchaseDropsDiscount(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 50000, Selected: true},
	}
	promo := &AppliedPromo{Code: "BIG20", DiscountPercentage: 20, MinPurchase: 100000}

	summary := BuildSummary(items, promo, Options{}, testFees, "IDR")

	assert.Zero(t, summary.Discount)
	assert.Equal(t, int64(50000), summary.Total)
}

func TestBuildSummaryFullDiscountReachesZero(t *testing.T) {
	// A 100% voucher with no add-ons produces a valid zero-total order
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 75000, Selected: true},
	}
	promo := &AppliedPromo{Code: "FREEBAG", DiscountPercentage: 100, Source: "voucher"}

	summary := BuildSummary(items, promo, Options{}, testFees, "IDR")

	assert.Equal(t, int64(75000), summary.Discount)
	assert.Zero(t, summary.Total)
}

func TestBuildSummaryEmptySelection(t *testing.T) {
	items := []SummaryItem{
		{ItemID: 1, VendorID: 5, LinePrice: 50000, Selected: false},
	}

	summary := BuildSummary(items, nil, Options{}, testFees, "IDR")

	assert.Zero(t, summary.Subtotal)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Groups)
	assert.Equal(t, int64(50000), summary.UnselectedAmount)
}
