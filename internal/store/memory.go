package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Ensure MemoryStore implements the interface.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps records in insertion order. It is used for local runs and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]models.DocumentRecord
}

// NewMemoryStore creates a store seeded with records.
func NewMemoryStore(records ...models.DocumentRecord) *MemoryStore {
	s := &MemoryStore{records: make(map[string]models.DocumentRecord)}
	for _, rec := range records {
		s.Put(rec)
	}
	return s
}

// Put stores rec, assigning an ID when it has none, and returns the ID.
// Replacing an existing record keeps its position.
func (s *MemoryStore) Put(rec models.DocumentRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = cloneRecord(rec)
	return rec.ID
}

// List returns copies of all records in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRecord(s.records[id]))
	}
	return out, nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return fmt.Errorf("record %q: %w", recordID, models.ErrNotFound)
	}
	delete(s.records, recordID)
	for i, id := range s.order {
		if id == recordID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteExtracted removes one extracted document from a record.
func (s *MemoryStore) DeleteExtracted(_ context.Context, recordID string, index int) (models.ExtractedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return models.ExtractedDocument{}, fmt.Errorf("record %q: %w", recordID, models.ErrNotFound)
	}
	removed, docs, err := withoutEntry(rec, index)
	if err != nil {
		return models.ExtractedDocument{}, err
	}
	rec.ExtractedDocuments = docs
	s.records[recordID] = rec
	return removed, nil
}

// AppendExtracted adds doc to a record.
func (s *MemoryStore) AppendExtracted(_ context.Context, recordID string, doc models.ExtractedDocument) (*models.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, fmt.Errorf("record %q: %w", recordID, models.ErrNotFound)
	}
	rec = cloneRecord(rec)
	rec.ExtractedDocuments = append(rec.ExtractedDocuments, doc)
	rec.Categories = withCategory(rec.Categories, doc.Category)
	s.records[recordID] = rec
	out := cloneRecord(rec)
	return &out, nil
}
