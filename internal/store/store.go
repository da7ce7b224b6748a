// Package store provides the document record store the folder browser reads
// from and the deletions and uploads that mutate it.
package store

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Store is the authoritative record listing. Callers re-list after every
// mutation; nothing caches derived views.
type Store interface {
	// List returns every well-formed record. Malformed records are skipped.
	List(ctx context.Context) ([]models.DocumentRecord, error)

	// Delete removes a record and all of its extracted documents.
	Delete(ctx context.Context, recordID string) error

	// DeleteExtracted removes the extracted document at index from a record
	// and returns the entry it removed, read in the same critical section.
	DeleteExtracted(ctx context.Context, recordID string, index int) (models.ExtractedDocument, error)

	// AppendExtracted adds doc to the end of a record's extracted documents
	// and records its category on the record. It returns the updated record.
	AppendExtracted(ctx context.Context, recordID string, doc models.ExtractedDocument) (*models.DocumentRecord, error)
}

// withCategory returns cats with category added unless an equal name is
// already present.
func withCategory(cats []string, category string) []string {
	for _, c := range cats {
		if c == category {
			return cats
		}
	}
	return append(cats, category)
}

// withoutEntry splits the entry at index out of rec's extracted documents.
func withoutEntry(rec models.DocumentRecord, index int) (models.ExtractedDocument, []models.ExtractedDocument, error) {
	if index < 0 || index >= len(rec.ExtractedDocuments) {
		return models.ExtractedDocument{}, nil, fmt.Errorf("record %q index %d: %w", rec.ID, index, models.ErrIndexOutOfRange)
	}
	docs := make([]models.ExtractedDocument, 0, len(rec.ExtractedDocuments)-1)
	docs = append(docs, rec.ExtractedDocuments[:index]...)
	docs = append(docs, rec.ExtractedDocuments[index+1:]...)
	return rec.ExtractedDocuments[index], docs, nil
}

func cloneRecord(rec models.DocumentRecord) models.DocumentRecord {
	rec.InvoiceNumbers = append([]string(nil), rec.InvoiceNumbers...)
	rec.Categories = append([]string(nil), rec.Categories...)
	rec.ExtractedDocuments = append([]models.ExtractedDocument(nil), rec.ExtractedDocuments...)
	return rec
}
