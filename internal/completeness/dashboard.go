package completeness

import (
	"strings"

	"github.com/Lllllllleong/shipmentdocflow/internal/categories"
	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// NoInvoices is shown for records that carry no invoice numbers.
const NoInvoices = "N/A"

// CategoryCount is the number of extracted documents filed under one
// checklist category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MissingRow is one record that still lacks required documents.
type MissingRow struct {
	RecordID       string   `json:"recordId"`
	CompanyName    string   `json:"companyName"`
	InvoiceNumbers []string `json:"invoiceNumbers"`
	InvoiceKey     string   `json:"invoiceKey"`
	Invoices       string   `json:"invoices"`
	Missing        []string `json:"missing"`
}

// Dashboard summarises the whole record listing for one direction.
type Dashboard struct {
	Direction          models.Direction                     `json:"direction"`
	TotalRecords       int                                  `json:"totalRecords"`
	TotalExtracted     int                                  `json:"totalExtracted"`
	RecordsByDirection map[models.Direction]int             `json:"recordsByDirection"`
	Companies          []string                             `json:"companies"`
	CategoryCounts     map[models.Direction][]CategoryCount `json:"categoryCounts"`
	Missing            []MissingRow                         `json:"missing"`
}

// BuildDashboard computes the overview for direction. Records with an unknown
// companyType only count toward TotalRecords and Companies. Missing rows are
// limited to records whose companyType equals direction.
func BuildDashboard(records []models.DocumentRecord, direction models.Direction) (Dashboard, error) {
	if _, err := categories.RequiredCategories(direction); err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{
		Direction:          direction,
		TotalRecords:       len(records),
		RecordsByDirection: make(map[models.Direction]int, len(models.Directions)),
		Companies:          []string{},
		CategoryCounts:     make(map[models.Direction][]CategoryCount, len(models.Directions)),
		Missing:            []MissingRow{},
	}

	counts := make(map[models.Direction]map[string]int, len(models.Directions))
	for _, d := range models.Directions {
		dash.RecordsByDirection[d] = 0
		counts[d] = make(map[string]int)
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.CompanyName != "" {
			name := strings.ToLower(strings.TrimSpace(rec.CompanyName))
			if !seen[name] {
				seen[name] = true
				dash.Companies = append(dash.Companies, name)
			}
		}

		if !rec.CompanyType.Valid() {
			continue
		}
		dash.RecordsByDirection[rec.CompanyType]++
		dash.TotalExtracted += len(rec.ExtractedDocuments)
		for _, doc := range rec.ExtractedDocuments {
			if name, ok := categories.Canonical(rec.CompanyType, doc.Category); ok {
				counts[rec.CompanyType][name]++
			}
		}

		if rec.CompanyType != direction {
			continue
		}
		missing, err := MissingCategories(rec, direction)
		if err != nil {
			return Dashboard{}, err
		}
		if len(missing) == 0 {
			continue
		}
		invoices := NoInvoices
		if len(rec.InvoiceNumbers) > 0 {
			invoices = strings.Join(rec.InvoiceNumbers, folders.InvoiceKeySeparator)
		}
		dash.Missing = append(dash.Missing, MissingRow{
			RecordID:       rec.ID,
			CompanyName:    rec.CompanyName,
			InvoiceNumbers: append([]string{}, rec.InvoiceNumbers...),
			InvoiceKey:     folders.InvoiceKey(rec.InvoiceNumbers),
			Invoices:       invoices,
			Missing:        missing,
		})
	}

	for _, d := range models.Directions {
		required, _ := categories.RequiredCategories(d)
		list := make([]CategoryCount, len(required))
		for i, name := range required {
			list[i] = CategoryCount{Category: name, Count: counts[d][name]}
		}
		dash.CategoryCounts[d] = list
	}
	return dash, nil
}
