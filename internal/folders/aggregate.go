// Package folders turns the flat list of processed records into the
// company → invoice → document hierarchy that operators browse.
//
// Everything here is a pure function of its input. The tree is rebuilt from
// the latest store listing on every request and is never patched in place.
package folders

import (
	"sort"
	"strings"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// InvoiceKeySeparator joins sorted invoice numbers into a folder key.
const InvoiceKeySeparator = ", "

// Entry is an extracted document placed in the tree, tagged with the record
// that owns it and its position inside that record.
type Entry struct {
	models.ExtractedDocument
	RecordID string `json:"recordId"`
	Index    int    `json:"index"`
}

// Tree maps company name → invoice key → ordered entries. Companies and
// invoice keys keep the order in which records introduced them.
type Tree struct {
	order     []string
	companies map[string]*company
}

type company struct {
	directions map[models.Direction]bool
	keys       []string
	invoices   map[string][]Entry
	declared   map[string][]string
}

// InvoiceKey is the folder key for a set of invoice numbers: the distinct
// numbers sorted lexicographically and joined with ", ". No numbers yields "".
func InvoiceKey(numbers []string) string {
	if len(numbers) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(numbers))
	distinct := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if seen[n] {
			continue
		}
		seen[n] = true
		distinct = append(distinct, n)
	}
	sort.Strings(distinct)
	return strings.Join(distinct, InvoiceKeySeparator)
}

// SplitInvoiceKey returns the invoice numbers a folder key was built from.
// It splits on InvoiceKeySeparator only, so numbers containing a bare comma
// survive the round trip.
func SplitInvoiceKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, InvoiceKeySeparator)
}

// Aggregate folds records into a Tree. Records without a company name are
// skipped. All records sharing a company and invoice key land in one bucket,
// including every record with no invoice numbers (the "" bucket).
func Aggregate(records []models.DocumentRecord) *Tree {
	t := &Tree{companies: make(map[string]*company)}
	for _, rec := range records {
		if rec.CompanyName == "" {
			continue
		}
		c, ok := t.companies[rec.CompanyName]
		if !ok {
			c = &company{
				directions: make(map[models.Direction]bool),
				invoices:   make(map[string][]Entry),
				declared:   make(map[string][]string),
			}
			t.companies[rec.CompanyName] = c
			t.order = append(t.order, rec.CompanyName)
		}
		if rec.CompanyType != "" {
			c.directions[rec.CompanyType] = true
		}

		key := InvoiceKey(rec.InvoiceNumbers)
		bucket, ok := c.invoices[key]
		if !ok {
			c.keys = append(c.keys, key)
		}
		for i, doc := range rec.ExtractedDocuments {
			bucket = append(bucket, Entry{ExtractedDocument: doc, RecordID: rec.ID, Index: i})
		}
		c.invoices[key] = bucket
		c.declared[key] = append(c.declared[key], rec.Categories...)
	}
	return t
}

// Companies returns every company in the tree regardless of direction.
func (t *Tree) Companies() []string {
	return append([]string(nil), t.order...)
}

// CompaniesFor returns the companies owning at least one record whose
// companyType is direction.
func (t *Tree) CompaniesFor(direction models.Direction) []string {
	out := []string{}
	for _, name := range t.order {
		if t.companies[name].directions[direction] {
			out = append(out, name)
		}
	}
	return out
}

// InvoiceKeysFor returns the company's invoice keys in insertion order. An
// unknown company has none.
func (t *Tree) InvoiceKeysFor(companyName string) []string {
	c, ok := t.companies[companyName]
	if !ok {
		return []string{}
	}
	return append([]string{}, c.keys...)
}

// DocumentsFor returns the entries filed under company and invoice key.
func (t *Tree) DocumentsFor(companyName, invoiceKey string) []Entry {
	c, ok := t.companies[companyName]
	if !ok {
		return []Entry{}
	}
	return append([]Entry{}, c.invoices[invoiceKey]...)
}

// CategoriesFor returns the record-level categories declared by the records
// filed under company and invoice key, in record order.
func (t *Tree) CategoriesFor(companyName, invoiceKey string) []string {
	c, ok := t.companies[companyName]
	if !ok {
		return []string{}
	}
	return append([]string{}, c.declared[invoiceKey]...)
}

// HasInvoice reports whether the tree has a folder for company and key.
func (t *Tree) HasInvoice(companyName, invoiceKey string) bool {
	c, ok := t.companies[companyName]
	if !ok {
		return false
	}
	_, ok = c.invoices[invoiceKey]
	return ok
}

// Directions returns the directions carried by the company's records.
func (t *Tree) Directions(companyName string) []models.Direction {
	c, ok := t.companies[companyName]
	if !ok {
		return nil
	}
	var out []models.Direction
	for _, d := range models.Directions {
		if c.directions[d] {
			out = append(out, d)
		}
	}
	return out
}
