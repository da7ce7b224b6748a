package store

import (
	"fmt"
	"strconv"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Firestore field names used by the upload backend.
const (
	fieldCompanyName    = "company_name"
	fieldCompanyType    = "companyType"
	fieldInvoiceNumbers = "invoice_numbers"
	fieldCategories     = "categories"
	fieldExtracted      = "extracted_pdfs"
)

// decodeRecord builds a record from raw Firestore data. Optional scalar fields
// of the wrong type are treated as absent. invoice_numbers and extracted_pdfs
// must be arrays when present because aggregation and index-based deletion
// depend on them; otherwise the record is malformed.
func decodeRecord(id string, data map[string]interface{}) (models.DocumentRecord, error) {
	rec := models.DocumentRecord{
		ID:          id,
		CompanyName: stringField(data, fieldCompanyName),
		CompanyType: models.Direction(stringField(data, fieldCompanyType)),
	}

	numbers, err := invoiceNumbers(data[fieldInvoiceNumbers])
	if err != nil {
		return rec, fmt.Errorf("%w: record %q: %v", models.ErrMalformedRecord, id, err)
	}
	rec.InvoiceNumbers = numbers

	if raw, ok := data[fieldCategories].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				rec.Categories = append(rec.Categories, s)
			}
		}
	}

	docs, err := extractedDocuments(data[fieldExtracted])
	if err != nil {
		return rec, fmt.Errorf("%w: record %q: %v", models.ErrMalformedRecord, id, err)
	}
	rec.ExtractedDocuments = docs
	return rec, nil
}

func invoiceNumbers(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is %T, want array", fieldInvoiceNumbers, v)
	}
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		switch n := n.(type) {
		case string:
			out = append(out, n)
		case int64:
			out = append(out, strconv.FormatInt(n, 10))
		case float64:
			out = append(out, strconv.FormatFloat(n, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("%s entry is %T", fieldInvoiceNumbers, n)
		}
	}
	return out, nil
}

func extractedDocuments(v interface{}) ([]models.ExtractedDocument, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is %T, want array", fieldExtracted, v)
	}
	out := make([]models.ExtractedDocument, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d] is %T, want map", fieldExtracted, i, item)
		}
		out = append(out, models.ExtractedDocument{
			Category:      stringField(m, "category"),
			PageRange:     stringField(m, "pdf_range"),
			CompanyName:   stringField(m, "company_name"),
			InvoiceNumber: stringField(m, "invoice_number"),
			ViewReference: stringField(m, "viewUrl"),
		})
	}
	return out, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
