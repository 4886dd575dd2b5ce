// internal/domain/cart/selection_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSelection(t *testing.T) {
	itemIDs := []uint{1, 2, 3}

	t.Run("no stored selection selects everything", func(t *testing.T) {
		selected := ResolveSelection(nil, false, itemIDs)
		assert.Equal(t, []uint{1, 2, 3}, selected)
	})

	t.Run("stored empty selection stays empty", func(t *testing.T) {
		selected := ResolveSelection([]uint{}, true, itemIDs)
		assert.Empty(t, selected)
	})

	t.Run("stale IDs are dropped", func(t *testing.T) {
		selected := ResolveSelection([]uint{2, 99}, true, itemIDs)
		assert.Equal(t, []uint{2}, selected)
	})
}

func TestToggleSelection(t *testing.T) {
	selected := []uint{1, 2}

	toggled := ToggleSelection(selected, 3)
	assert.True(t, IsSelected(toggled, 3))

	// Toggling twice restores the original membership
	restored := ToggleSelection(toggled, 3)
	assert.False(t, IsSelected(restored, 3))
	assert.ElementsMatch(t, selected, restored)
}

func TestToggleSelectionRemoves(t *testing.T) {
	selected := ToggleSelection([]uint{1, 2, 3}, 2)
	assert.Equal(t, []uint{1, 3}, selected)
}

func TestRemoveFromSelection(t *testing.T) {
	selected := RemoveFromSelection([]uint{1, 2, 3}, 2)
	assert.Equal(t, []uint{1, 3}, selected)

	// Removing an absent ID is a no-op
	selected = RemoveFromSelection(selected, 42)
	assert.Equal(t, []uint{1, 3}, selected)
}

func TestCalculateTotals(t *testing.T) {
	items := []CartItemResponse{
		{Quantity: 2, LinePrice: 20000, IsSelected: true},
		{Quantity: 1, LinePrice: 15000, IsSelected: true},
		{Quantity: 3, LinePrice: 30000, IsSelected: false},
	}

	totals := calculateTotals(items)

	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 2, totals.SelectedCount)
	assert.Equal(t, 6, totals.TotalQuantity)
	assert.Equal(t, int64(35000), totals.SubTotal)
	assert.Equal(t, int64(30000), totals.UnselectedAmount)
}
