package email

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "BeanMarket API"
	cfg.Email.Provider = "log"
	cfg.Email.FromEmail = "noreply@beanmarket.example"
	cfg.Checkout.Currency = "IDR"
	return cfg
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc, err := NewService(testConfig(), logger)
	require.NoError(t, err)
	return svc
}

func TestFormatAmount(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		amount int64
		want   string
	}{
		{0, "IDR 0"},
		{950, "IDR 950"},
		{95000, "IDR 95.000"},
		{1250000, "IDR 1.250.000"},
		{-50000, "IDR -50.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.formatAmount(tt.amount))
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	svc := newTestService(t)

	o := &order.Order{
		OrderNumber:        "ORD-20260314-00042",
		SubtotalAmount:     190000,
		DiscountAmount:     19000,
		EcoPackagingAmount: 5000,
		CarbonOffsetAmount: 2000,
		TotalAmount:        178000,
		CreatedAt:          time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{Name: "Ijen Highlands Natural", VendorName: "Gunung Biru Roastery", Quantity: 2, Price: 95000, TotalPrice: 190000},
		},
		ShippingAddress: order.Address{
			FirstName:    "Sari",
			LastName:     "Wijaya",
			AddressLine1: "Jl. Merdeka 10",
			City:         "Malang",
			State:        "Jawa Timur",
			PostalCode:   "65119",
			Country:      "ID",
		},
	}
	u := &user.User{FirstName: "Sari", Email: "sari@example.com"}

	// The log provider never touches the network, so send succeeds
	require.NoError(t, svc.SendOrderConfirmation(u, o))

	items := []OrderItemData{{Name: "Ijen Highlands Natural", VendorName: "Gunung Biru Roastery", Quantity: 2, Price: "IDR 95.000", Total: "IDR 190.000"}}
	html, err := svc.render(EmailTypeOrderConfirmation, OrderConfirmationData{
		BaseTemplateData: svc.baseData(),
		FirstName:        u.FirstName,
		OrderNumber:      o.OrderNumber,
		OrderDate:        "14 March 2026",
		Items:            items,
		Subtotal:         svc.formatAmount(o.SubtotalAmount),
		Discount:         svc.formatAmount(o.DiscountAmount),
		AddOns:           svc.formatAmount(o.AddOnAmount()),
		Total:            svc.formatAmount(o.TotalAmount),
		ShippingAddress:  formatShippingAddress(&o.ShippingAddress),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "ORD-20260314-00042")
	assert.Contains(t, html, "Gunung Biru Roastery")
	assert.Contains(t, html, "IDR 178.000")
	assert.Contains(t, html, "Malang, Jawa Timur 65119")
}

func TestSendRejectsUnknownProvider(t *testing.T) {
	svc := newTestService(t)
	svc.config.Email.Provider = "carrier-pigeon"

	err := svc.send(&Email{To: []string{"x@example.com"}, Subject: "test"})
	assert.ErrorContains(t, err, "unsupported email provider")
}

func TestFormatShippingAddressSkipsEmptyLine2(t *testing.T) {
	addr := &order.Address{
		FirstName:    "Budi",
		LastName:     "Santoso",
		AddressLine1: "Jl. Sudirman 1",
		City:         "Jakarta",
		State:        "DKI Jakarta",
		PostalCode:   "10110",
		Country:      "ID",
	}

	got := formatShippingAddress(addr)
	assert.Equal(t, "Budi Santoso\nJl. Sudirman 1\nJakarta, DKI Jakarta 10110\nID", got)
}
