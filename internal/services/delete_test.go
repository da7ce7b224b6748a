package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
	"github.com/Lllllllleong/shipmentdocflow/internal/store"
)

func recordIDs(t *testing.T, st store.Store) []string {
	t.Helper()
	recs, err := st.List(context.Background())
	require.NoError(t, err)
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

func TestDocumentsFunction_DeleteRecord(t *testing.T) {
	st := store.NewMemoryStore(shipmentRecords()...)
	f := newTestDocuments(st, newFakeBlobs())

	require.NoError(t, f.DeleteRecord(context.Background(), "r2"))
	assert.Equal(t, []string{"r1", "r3", "r4", "r5"}, recordIDs(t, st))

	err := f.DeleteRecord(context.Background(), "r2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDocumentsFunction_DeleteExtracted_RemovesObject(t *testing.T) {
	st := store.NewMemoryStore(shipmentRecords()...)
	blobs := newFakeBlobs()
	blobs.put("gs://test-bucket/r1/awb.pdf", fakePDF)
	f := newTestDocuments(st, blobs)

	require.NoError(t, f.DeleteExtracted(context.Background(), "r1", 0))
	assert.False(t, blobs.has("gs://test-bucket/r1/awb.pdf"))
	assert.Equal(t, []string{"gs://test-bucket/r1/awb.pdf"}, blobs.deleted)

	recs, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs[0].ExtractedDocuments, 1)
	assert.Equal(t, "Packing List", recs[0].ExtractedDocuments[0].Category)
}

func TestDocumentsFunction_DeleteExtracted_NoObject(t *testing.T) {
	recs := shipmentRecords()
	recs[1].ExtractedDocuments[0].ViewReference = "https://example.com/party.pdf"
	st := store.NewMemoryStore(recs...)
	blobs := newFakeBlobs()
	f := newTestDocuments(st, blobs)
	ctx := context.Background()

	// Entry without a reference.
	require.NoError(t, f.DeleteExtracted(ctx, "r1", 1))
	// Entry whose reference the blob store cannot open.
	require.NoError(t, f.DeleteExtracted(ctx, "r2", 0))
	assert.Empty(t, blobs.deleted)
}

func TestDocumentsFunction_DeleteExtracted_KeepsForeignObject(t *testing.T) {
	recs := shipmentRecords()
	recs[0].ExtractedDocuments[0].ViewReference = "gs://pipeline-bucket/r1/p1.pdf"
	st := store.NewMemoryStore(recs...)
	blobs := newFakeBlobs()
	f := newTestDocuments(st, blobs)

	require.NoError(t, f.DeleteExtracted(context.Background(), "r1", 0))
	assert.Empty(t, blobs.deleted)

	left, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, left[0].ExtractedDocuments, 1)
}

// shiftingStore removes the first entry of a record right before the
// requested delete runs, as a concurrent delete would.
type shiftingStore struct{ *store.MemoryStore }

func (s shiftingStore) DeleteExtracted(ctx context.Context, recordID string, index int) (models.ExtractedDocument, error) {
	if _, err := s.MemoryStore.DeleteExtracted(ctx, recordID, 0); err != nil {
		return models.ExtractedDocument{}, err
	}
	return s.MemoryStore.DeleteExtracted(ctx, recordID, index)
}

func TestDocumentsFunction_DeleteExtracted_ConcurrentShift(t *testing.T) {
	mem := store.NewMemoryStore(models.DocumentRecord{
		ID:          "r1",
		CompanyName: "Acme",
		CompanyType: models.DirectionImport,
		ExtractedDocuments: []models.ExtractedDocument{
			{Category: "A", ViewReference: "gs://test-bucket/a.pdf"},
			{Category: "B", ViewReference: "gs://test-bucket/b.pdf"},
			{Category: "C", ViewReference: "gs://test-bucket/c.pdf"},
		},
	})
	blobs := newFakeBlobs()
	for _, ref := range []string{"gs://test-bucket/a.pdf", "gs://test-bucket/b.pdf", "gs://test-bucket/c.pdf"} {
		blobs.put(ref, fakePDF)
	}
	f := newTestDocuments(shiftingStore{mem}, blobs)

	require.NoError(t, f.DeleteExtracted(context.Background(), "r1", 1))
	assert.True(t, blobs.has("gs://test-bucket/b.pdf"))
	assert.Equal(t, []string{"gs://test-bucket/c.pdf"}, blobs.deleted)

	recs, err := mem.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs[0].ExtractedDocuments, 1)
	assert.Equal(t, "B", recs[0].ExtractedDocuments[0].Category)
}

func TestDocumentsFunction_DeleteExtracted_Errors(t *testing.T) {
	f := newTestDocuments(store.NewMemoryStore(shipmentRecords()...), newFakeBlobs())
	ctx := context.Background()

	assert.ErrorIs(t, f.DeleteExtracted(ctx, "r1", 2), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, f.DeleteExtracted(ctx, "nope", 0), models.ErrNotFound)
}

func TestDocumentsFunction_DeleteInvoiceFolder(t *testing.T) {
	recs := append(shipmentRecords(), models.DocumentRecord{
		ID:             "r6",
		CompanyName:    "Acme",
		CompanyType:    models.DirectionImport,
		InvoiceNumbers: []string{"200", "999"},
	})
	st := store.NewMemoryStore(recs...)
	f := newTestDocuments(st, newFakeBlobs())

	deleted, err := f.DeleteInvoiceFolder(context.Background(), "Acme", "100, 200")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2", "r6"}, deleted)
	// Beta shares the key but is another company.
	assert.Equal(t, []string{"r3", "r4", "r5"}, recordIDs(t, st))
}

func TestDocumentsFunction_DeleteInvoiceFolder_EmptyKey(t *testing.T) {
	st := store.NewMemoryStore(shipmentRecords()...)
	f := newTestDocuments(st, newFakeBlobs())

	deleted, err := f.DeleteInvoiceFolder(context.Background(), "Acme", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r5"}, deleted)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, recordIDs(t, st))
}

func TestDocumentsFunction_DeleteInvoiceFolder_NoMatch(t *testing.T) {
	st := store.NewMemoryStore(shipmentRecords()...)
	f := newTestDocuments(st, newFakeBlobs())

	deleted, err := f.DeleteInvoiceFolder(context.Background(), "Nobody", "100")
	require.NoError(t, err)
	assert.NotNil(t, deleted)
	assert.Empty(t, deleted)
	assert.Len(t, recordIDs(t, st), 5)
}

func TestDocumentsFunction_DeleteInvoiceFolder_PartialFailure(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore(shipmentRecords()...), failDelete: "r2"}
	f := newTestDocuments(st, newFakeBlobs())

	deleted, err := f.DeleteInvoiceFolder(context.Background(), "Acme", "100, 200")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r2")
	assert.NotContains(t, deleted, "r2")
	assert.Contains(t, recordIDs(t, st), "r2")
}

func TestDocumentsFunction_DeleteInvoiceFolder_CommaInInvoiceNumber(t *testing.T) {
	st := store.NewMemoryStore(
		models.DocumentRecord{ID: "target", CompanyName: "Acme", CompanyType: models.DirectionImport, InvoiceNumbers: []string{"INV-7,8"}},
		models.DocumentRecord{ID: "other", CompanyName: "Acme", CompanyType: models.DirectionImport, InvoiceNumbers: []string{"8"}},
	)
	f := newTestDocuments(st, newFakeBlobs())

	recs, err := st.List(context.Background())
	require.NoError(t, err)
	keys := folders.Aggregate(recs).InvoiceKeysFor("Acme")
	require.Equal(t, []string{"INV-7,8", "8"}, keys)

	deleted, err := f.DeleteInvoiceFolder(context.Background(), "Acme", keys[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"target"}, deleted)
	assert.Equal(t, []string{"other"}, recordIDs(t, st))
}

func TestFolderRecords(t *testing.T) {
	recs := shipmentRecords()
	assert.Equal(t, []string{"r1", "r2"}, folderRecords(recs, "Acme", "100"))
	assert.Equal(t, []string{"r1", "r2", "r3"}, folderRecords(recs, "Acme", "100, 300"))
	assert.Nil(t, folderRecords(recs, "Acme", "300,100"))
	assert.Equal(t, []string{"r4"}, folderRecords(recs, "Beta", "200"))
	assert.Nil(t, folderRecords(recs, "Acme", "42"))
}
