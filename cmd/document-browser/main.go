package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
	"github.com/Lllllllleong/shipmentdocflow/internal/services"
)

const maxUploadBytes = 32 << 20

var (
	documentsInstance *services.DocumentsFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleDashboard", handleDashboard)
	functions.HTTP("HandleBrowse", handleBrowse)
	functions.HTTP("HandleDelete", handleDelete)
	functions.HTTP("HandleUpload", handleUpload)
	functions.HTTP("HandleView", handleView)
}

func main() {}

// documents lazily builds the shared service. It writes a 500 and returns nil
// when initialization failed.
func documents(w http.ResponseWriter) *services.DocumentsFunction {
	once.Do(func() {
		documentsInstance, initErr = services.NewDocuments(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Document browser initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return nil
	}
	return documentsInstance
}

// handleDashboard serves the overview and missing-documents table.
// GET ?direction=import|export (defaults to the configured direction).
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	f := documents(w)
	if f == nil {
		return
	}
	direction := f.DefaultDirection()
	if raw := r.URL.Query().Get("direction"); raw != "" {
		d, err := models.ParseDirection(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		direction = d
	}

	dash, err := f.Dashboard(r.Context(), direction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// handleBrowse serves one level of the folder tree.
// GET ?direction=&company=&invoiceKey= ; each parameter requires the previous one.
func handleBrowse(w http.ResponseWriter, r *http.Request) {
	f := documents(w)
	if f == nil {
		return
	}
	q := r.URL.Query()
	cursor, err := folders.Resume(q.Get("direction"), q.Get("company"), q.Get("invoiceKey"), q.Has("invoiceKey"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := f.Browse(r.Context(), cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDelete removes a record, one extracted document, or an invoice folder.
func handleDelete(w http.ResponseWriter, r *http.Request) {
	f := documents(w)
	if f == nil {
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch {
	case req.RecordID != "" && req.Index != nil:
		if err := f.DeleteExtracted(ctx, req.RecordID, *req.Index); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.DeleteResponse{Status: models.DeleteSucceeded, RecordIDs: []string{req.RecordID}})
	case req.RecordID != "":
		if err := f.DeleteRecord(ctx, req.RecordID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.DeleteResponse{Status: models.DeleteSucceeded, RecordIDs: []string{req.RecordID}})
	case req.Company != "" && req.InvoiceKey != nil:
		deleted, err := f.DeleteInvoiceFolder(ctx, req.Company, *req.InvoiceKey)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.DeleteResponse{Status: models.DeleteSucceeded, RecordIDs: deleted})
	default:
		http.Error(w, "Bad Request: recordId or company and invoiceKey required", http.StatusBadRequest)
	}
}

// handleUpload adds a PDF to an invoice folder. It takes the same multipart
// fields as the upload dialog: files, category, companyType, invoiceNumbers and
// an optional companyName.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	f := documents(w)
	if f == nil {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("Could not parse multipart form", "error", err)
		http.Error(w, "Bad Request: could not parse form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("files")
	if err != nil {
		http.Error(w, "Bad Request: files field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Bad Request: could not read file", http.StatusBadRequest)
		return
	}

	direction := r.FormValue("companyType")
	if direction == "" {
		direction = string(f.DefaultDirection())
	}
	res, err := f.Upload(r.Context(), services.UploadRequest{
		Category:   r.FormValue("category"),
		Direction:  direction,
		InvoiceKey: r.FormValue("invoiceNumbers"),
		Company:    r.FormValue("companyName"),
		Filename:   header.Filename,
		Data:       data,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !res.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// handleView streams the PDF behind ?ref=.
func handleView(w http.ResponseWriter, r *http.Request) {
	f := documents(w)
	if f == nil {
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		http.Error(w, "Bad Request: ref is required", http.StatusBadRequest)
		return
	}
	rc, err := f.OpenView(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream PDF", "error", err, "viewReference", ref)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not Found: "+err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidDirection),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrIndexOutOfRange),
		errors.Is(err, models.ErrUnsupportedReference):
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
	}
}
