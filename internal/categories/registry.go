// Package categories holds the mandatory document checklist for each
// shipment direction.
package categories

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Other is the section name for documents that match no checklist entry.
const Other = "Others"

var checklists = map[models.Direction][]string{
	models.DirectionImport: {
		"Party's Invoice",
		"Air Way Bill",
		"Bill of Entry",
		"Custom duty Invoice",
		"Freight Invoice",
		"Clearing Agent Invoice",
	},
	models.DirectionExport: {
		"Custom Invoice",
		"Bill of Lading",
		"Shipping Bill",
		"Freight Invoice",
		"Tax Invoice",
		"Bilty",
		"Clearing Agent Invoice",
		"Purchase Order",
		"Eway Bill",
	},
}

// RequiredCategories returns the ordered checklist for direction. The slice
// is a copy and may be modified by the caller.
func RequiredCategories(direction models.Direction) ([]string, error) {
	list, ok := checklists[direction]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDirection, direction)
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// Canonical returns the checklist spelling of category for direction, matched
// case-insensitively. ok is false when category is not on that checklist.
func Canonical(direction models.Direction, category string) (name string, ok bool) {
	folded := Fold(category)
	for _, required := range checklists[direction] {
		if Fold(required) == folded {
			return required, true
		}
	}
	return "", false
}

// Fold normalises a category name for comparison.
func Fold(category string) string {
	return strings.ToLower(category)
}
