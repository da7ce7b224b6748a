// Package completeness reports which mandatory categories an invoice folder
// is still missing.
package completeness

import (
	"fmt"

	"github.com/Lllllllleong/shipmentdocflow/internal/categories"
	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// ResolveDirection picks the checklist direction for rec. The record's own
// companyType always wins; fallback is used only when companyType is empty.
func ResolveDirection(rec models.DocumentRecord, fallback models.Direction) (models.Direction, error) {
	d := rec.CompanyType
	if d == "" {
		d = fallback
	}
	if !d.Valid() {
		return "", fmt.Errorf("%w: record %q has %q", models.ErrInvalidDirection, rec.ID, d)
	}
	return d, nil
}

// MissingCategories returns the checklist entries for rec's direction that
// match neither its record-level categories nor the category of any of its
// extracted documents. The result is in checklist order.
func MissingCategories(rec models.DocumentRecord, fallback models.Direction) ([]string, error) {
	d, err := ResolveDirection(rec, fallback)
	if err != nil {
		return nil, err
	}
	present := make([]string, 0, len(rec.Categories)+len(rec.ExtractedDocuments))
	present = append(present, rec.Categories...)
	for _, doc := range rec.ExtractedDocuments {
		present = append(present, doc.Category)
	}
	return Missing(d, present)
}

// HasMissing reports whether rec is missing any required category.
func HasMissing(rec models.DocumentRecord, fallback models.Direction) (bool, error) {
	missing, err := MissingCategories(rec, fallback)
	if err != nil {
		return false, err
	}
	return len(missing) > 0, nil
}

// MissingForGroup checks an aggregated invoice folder against the checklist
// for direction. declared holds the record-level categories of the folder's
// records.
func MissingForGroup(direction models.Direction, declared []string, entries []folders.Entry) ([]string, error) {
	present := make([]string, 0, len(declared)+len(entries))
	present = append(present, declared...)
	for _, e := range entries {
		present = append(present, e.Category)
	}
	return Missing(direction, present)
}

// Missing walks the checklist for direction and keeps the entries with no
// case-insensitive match in present.
func Missing(direction models.Direction, present []string) ([]string, error) {
	required, err := categories.RequiredCategories(direction)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(present))
	for _, p := range present {
		have[categories.Fold(p)] = true
	}
	missing := []string{}
	for _, name := range required {
		if !have[categories.Fold(name)] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
