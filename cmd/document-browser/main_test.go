package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/shipmentdocflow/internal/gcp"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
	"github.com/Lllllllleong/shipmentdocflow/internal/services"
	"github.com/Lllllllleong/shipmentdocflow/internal/store"
)

type memBlobs map[string][]byte

func (m memBlobs) Save(_ context.Context, object string, data []byte) (string, error) {
	ref := gcp.ObjectURI("test-bucket", object)
	m[ref] = data
	return ref, nil
}

func (m memBlobs) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if _, _, err := gcp.ParseObjectURI(ref); err != nil {
		return nil, err
	}
	data, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", ref, models.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m memBlobs) Delete(_ context.Context, ref string) error {
	if bucket, _, err := gcp.ParseObjectURI(ref); err != nil || bucket != "test-bucket" {
		return fmt.Errorf("%w: %s", models.ErrUnsupportedReference, ref)
	}
	delete(m, ref)
	return nil
}

// useDocuments swaps the lazily built service for one over an in-memory store.
func useDocuments(t *testing.T, blobs memBlobs) *store.MemoryStore {
	t.Helper()
	once.Do(func() {})
	st := store.NewMemoryStore(
		models.DocumentRecord{
			ID:             "r1",
			CompanyName:    "Acme",
			CompanyType:    models.DirectionImport,
			InvoiceNumbers: []string{"200", "100"},
			ExtractedDocuments: []models.ExtractedDocument{
				{Category: "Air Way Bill", PageRange: "1", ViewReference: "gs://test-bucket/r1/awb.pdf"},
			},
		},
		models.DocumentRecord{
			ID:             "r2",
			CompanyName:    "Acme",
			CompanyType:    models.DirectionImport,
			InvoiceNumbers: []string{"300"},
		},
	)
	documentsInstance = services.NewDocumentsWith(st, blobs, services.DocumentsConfig{
		UploadsBucket:     "test-bucket",
		DefaultDirection:  models.DirectionImport,
		DeleteConcurrency: 2,
	})
	initErr = nil
	return st
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandleDashboard(t *testing.T) {
	useDocuments(t, memBlobs{})

	rec := httptest.NewRecorder()
	handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "import", body["direction"])
	assert.Equal(t, float64(2), body["totalRecords"])

	rec = httptest.NewRecorder()
	handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/?direction=EXPORT", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "export", decodeBody(t, rec)["direction"])

	rec = httptest.NewRecorder()
	handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/?direction=domestic", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBrowse(t *testing.T) {
	useDocuments(t, memBlobs{})

	rec := httptest.NewRecorder()
	handleBrowse(rec, httptest.NewRequest(http.MethodGet, "/?direction=import&company=Acme", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeBody(t, rec)["view"].(map[string]interface{})
	assert.Equal(t, []interface{}{"100, 200", "300"}, view["invoiceKeys"])

	rec = httptest.NewRecorder()
	handleBrowse(rec, httptest.NewRequest(http.MethodGet, "/?direction=import&company=Acme&invoiceKey=100%2C+200", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Contains(t, body, "sections")
	assert.Contains(t, body["missing"], "Party's Invoice")

	rec = httptest.NewRecorder()
	handleBrowse(rec, httptest.NewRequest(http.MethodGet, "/?company=Acme", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, `{}`, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{`, http.StatusBadRequest},
		{"no target", http.MethodPost, `{}`, http.StatusBadRequest},
		{"record", http.MethodDelete, `{"recordId":"r2"}`, http.StatusOK},
		{"missing record", http.MethodPost, `{"recordId":"nope"}`, http.StatusNotFound},
		{"extracted", http.MethodPost, `{"recordId":"r1","index":0}`, http.StatusOK},
		{"extracted out of range", http.MethodPost, `{"recordId":"r1","index":5}`, http.StatusBadRequest},
		{"folder", http.MethodPost, `{"company":"Acme","invoiceKey":"100, 200"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useDocuments(t, memBlobs{})
			rec := httptest.NewRecorder()
			handleDelete(rec, httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleDelete_FolderReturnsIDs(t *testing.T) {
	st := useDocuments(t, memBlobs{})

	rec := httptest.NewRecorder()
	handleDelete(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"company":"Acme","invoiceKey":"300"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.DeleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.DeleteSucceeded, resp.Status)
	assert.Equal(t, []string{"r2"}, resp.RecordIDs)
	assert.Equal(t, "success", decodeBody(t, rec)["status"])

	recs, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestHandleView(t *testing.T) {
	pdf := []byte("%PDF-1.4 body")
	useDocuments(t, memBlobs{"gs://test-bucket/r1/awb.pdf": pdf})

	rec := httptest.NewRecorder()
	handleView(rec, httptest.NewRequest(http.MethodGet, "/?ref=gs://test-bucket/r1/awb.pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, pdf, rec.Body.Bytes())

	for ref, want := range map[string]int{
		"":                             http.StatusBadRequest,
		"gs://test-bucket/missing.pdf": http.StatusNotFound,
		"https://example.com/a.pdf":    http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		handleView(rec, httptest.NewRequest(http.MethodGet, "/?ref="+ref, nil))
		assert.Equal(t, want, rec.Code, ref)
	}
}

func TestHandleUpload_BadRequests(t *testing.T) {
	useDocuments(t, memBlobs{})

	rec := httptest.NewRecorder()
	handleUpload(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("category", "Air Way Bill"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec = httptest.NewRecorder()
	handleUpload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_NotPDF(t *testing.T) {
	blobs := memBlobs{}
	useDocuments(t, blobs)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("category", "Air Way Bill"))
	require.NoError(t, mw.WriteField("companyType", "import"))
	require.NoError(t, mw.WriteField("invoiceNumbers", "300"))
	fw, err := mw.CreateFormFile("files", "notes.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handleUpload(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "Please select a valid PDF file", body["reason"])
	assert.Empty(t, blobs)
}
