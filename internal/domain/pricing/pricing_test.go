package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  int64
	}{
		{
			name:  "empty cart",
			items: nil,
			want:  0,
		},
		{
			name: "snapshot and live prices mix",
			items: []LineItem{
				{Price: 10000, Quantity: 2},
				{UnitPrice: 5000, Quantity: 3},
			},
			want: 35000,
		},
		{
			name: "snapshot price wins over live price",
			items: []LineItem{
				{UnitPrice: 8000, Price: 12000, Quantity: 1},
			},
			want: 8000,
		},
		{
			name: "malformed lines contribute zero",
			items: []LineItem{
				{Price: 10000, Quantity: 0},
				{Price: 10000, Quantity: -2},
				{Quantity: 5},
				{Price: 2500, Quantity: 4},
			},
			want: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateSubtotal(tt.items))

			// Reordering the lines must not change the result
			reversed := make([]LineItem, len(tt.items))
			for i, item := range tt.items {
				reversed[len(tt.items)-1-i] = item
			}
			assert.Equal(t, tt.want, CalculateSubtotal(reversed))
		})
	}
}

func TestCalculateDiscount(t *testing.T) {
	assert.Equal(t, int64(10000), CalculateDiscount(100000, 10))
	assert.Equal(t, int64(0), CalculateDiscount(100000, 0))
	assert.Equal(t, int64(100000), CalculateDiscount(100000, 100))
	assert.Equal(t, int64(12500), CalculateDiscount(50000, 25))
}

func TestCalculateTotal(t *testing.T) {
	assert.Equal(t, int64(90000), CalculateTotal(100000, 10000))
	assert.Equal(t, int64(100000), CalculateTotal(100000, 0))

	// Not clamped: a discount larger than the subtotal goes negative
	assert.Equal(t, int64(-5000), CalculateTotal(10000, 15000))
}
