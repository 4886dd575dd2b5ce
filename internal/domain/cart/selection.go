// internal/domain/cart/selection.go
package cart

// Selection tracks which cart item IDs are included in checkout. A cart
// with no stored selection treats every item as selected; an explicitly
// cleared selection is stored as an empty list, which is not the same
// thing.

// ResolveSelection reconciles a stored selection with the current cart.
// When no selection was stored, every item is selected. Stored IDs that no
// longer exist in the cart are dropped.
func ResolveSelection(stored []uint, hasStored bool, itemIDs []uint) []uint {
	if !hasStored {
		return append([]uint(nil), itemIDs...)
	}

	current := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		current[id] = true
	}

	selected := make([]uint, 0, len(stored))
	for _, id := range stored {
		if current[id] {
			selected = append(selected, id)
		}
	}
	return selected
}

// ToggleSelection flips membership of a single item ID. Toggling twice
// returns to the original selection.
func ToggleSelection(selected []uint, itemID uint) []uint {
	result := make([]uint, 0, len(selected)+1)
	removed := false
	for _, id := range selected {
		if id == itemID {
			removed = true
			continue
		}
		result = append(result, id)
	}
	if !removed {
		result = append(result, itemID)
	}
	return result
}

// RemoveFromSelection drops an item ID, used when the cart line is deleted
func RemoveFromSelection(selected []uint, itemID uint) []uint {
	result := make([]uint, 0, len(selected))
	for _, id := range selected {
		if id != itemID {
			result = append(result, id)
		}
	}
	return result
}

// IsSelected reports whether an item ID is part of the selection
func IsSelected(selected []uint, itemID uint) bool {
	for _, id := range selected {
		if id == itemID {
			return true
		}
	}
	return false
}
