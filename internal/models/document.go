package models

import (
	"fmt"
	"strings"
)

// Direction is the shipment classification of a record. It selects which
// category checklist applies.
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// Directions lists every known direction in presentation order.
var Directions = []Direction{DirectionImport, DirectionExport}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionImport || d == DirectionExport
}

// ParseDirection accepts "import" or "export" in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// DocumentRecord is one uploaded PDF after it has been split and classified.
// It is owned by the document store; the folder and completeness logic only
// reads it.
type DocumentRecord struct {
	ID                 string              `firestore:"-" json:"id"`
	CompanyName        string              `firestore:"company_name,omitempty" json:"companyName,omitempty"`
	CompanyType        Direction           `firestore:"companyType,omitempty" json:"companyType,omitempty"`
	InvoiceNumbers     []string            `firestore:"invoice_numbers" json:"invoiceNumbers"`
	Categories         []string            `firestore:"categories" json:"categories"`
	ExtractedDocuments []ExtractedDocument `firestore:"extracted_pdfs" json:"extractedDocuments"`
}

// ExtractedDocument is a classified sub-document cut out of a record's PDF.
// CompanyName and InvoiceNumber are copies made by the classifier and may
// disagree with the parent record.
type ExtractedDocument struct {
	Category      string `firestore:"category" json:"category"`
	PageRange     string `firestore:"pdf_range,omitempty" json:"pageRange,omitempty"`
	CompanyName   string `firestore:"company_name,omitempty" json:"companyName,omitempty"`
	InvoiceNumber string `firestore:"invoice_number,omitempty" json:"invoiceNumber,omitempty"`
	ViewReference string `firestore:"viewUrl,omitempty" json:"viewReference,omitempty"`
}
