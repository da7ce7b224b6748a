package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Ensure FirestoreStore implements the interface.
var _ Store = (*FirestoreStore)(nil)

// FirestoreStore reads and mutates processed PDF records in one Firestore
// collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore wraps client for the named collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

// List streams the collection and decodes every document, skipping the
// malformed ones.
func (s *FirestoreStore) List(ctx context.Context) ([]models.DocumentRecord, error) {
	it := s.client.Collection(s.collection).Documents(ctx)
	defer it.Stop()

	var records []models.DocumentRecord
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list records in %s: %w", s.collection, err)
		}
		rec, err := decodeRecord(snap.Ref.ID, snap.Data())
		if err != nil {
			slog.Warn("Skipping malformed record.", "documentId", snap.Ref.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the record document. It fails with ErrNotFound when the
// document does not exist.
func (s *FirestoreStore) Delete(ctx context.Context, recordID string) error {
	_, err := s.client.Collection(s.collection).Doc(recordID).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("record %q: %w", recordID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete record %q: %w", recordID, err)
	}
	return nil
}

// DeleteExtracted rewrites extracted_pdfs without the entry at index inside a
// transaction, so concurrent appends are not lost. The removed entry is the
// one read by the committed attempt.
func (s *FirestoreStore) DeleteExtracted(ctx context.Context, recordID string, index int) (models.ExtractedDocument, error) {
	ref := s.client.Collection(s.collection).Doc(recordID)
	var removed models.ExtractedDocument
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, err := s.get(tx, ref)
		if err != nil {
			return err
		}
		entry, docs, err := withoutEntry(rec, index)
		if err != nil {
			return err
		}
		removed = entry
		return tx.Update(ref, []firestore.Update{
			{Path: fieldExtracted, Value: docs},
		})
	})
	if err != nil {
		return models.ExtractedDocument{}, err
	}
	return removed, nil
}

// AppendExtracted adds doc to the record's extracted_pdfs and its category to
// categories inside a transaction.
func (s *FirestoreStore) AppendExtracted(ctx context.Context, recordID string, doc models.ExtractedDocument) (*models.DocumentRecord, error) {
	ref := s.client.Collection(s.collection).Doc(recordID)
	var updated models.DocumentRecord
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, err := s.get(tx, ref)
		if err != nil {
			return err
		}
		rec.ExtractedDocuments = append(rec.ExtractedDocuments, doc)
		rec.Categories = withCategory(rec.Categories, doc.Category)
		updated = rec
		return tx.Update(ref, []firestore.Update{
			{Path: fieldExtracted, Value: rec.ExtractedDocuments},
			{Path: fieldCategories, Value: rec.Categories},
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *FirestoreStore) get(tx *firestore.Transaction, ref *firestore.DocumentRef) (models.DocumentRecord, error) {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return models.DocumentRecord{}, fmt.Errorf("record %q: %w", ref.ID, models.ErrNotFound)
	}
	if err != nil {
		return models.DocumentRecord{}, fmt.Errorf("failed to read record %q: %w", ref.ID, err)
	}
	return decodeRecord(ref.ID, snap.Data())
}
