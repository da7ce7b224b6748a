package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/shipmentdocflow/internal/categories"
	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// UploadRequest adds a PDF to an existing invoice folder under category.
// Company is optional and narrows the folder lookup when two companies share
// an invoice key.
type UploadRequest struct {
	Category   string
	Direction  string
	InvoiceKey string
	Company    string
	Filename   string
	Data       []byte
}

// AttachRequest files a PDF that is already in Cloud Storage.
type AttachRequest struct {
	Category   string
	Direction  string
	InvoiceKey string
	Company    string
	ObjectRef  string
}

// folderTarget is a validated upload destination.
type folderTarget struct {
	category  string
	direction models.Direction
	key       string
	company   string
}

// Upload stores req.Data and appends it to the first record of the requested
// direction whose invoice key matches. Problems with the request itself come
// back as a failed result; only collaborator failures are returned as errors.
func (f *DocumentsFunction) Upload(ctx context.Context, req UploadRequest) (models.UploadResult, error) {
	logCtx := slog.With("filename", req.Filename, "category", req.Category, "invoiceKey", req.InvoiceKey)
	logCtx.Info("Processing upload.")

	target, reason := parseTarget(req.Category, req.Direction, req.InvoiceKey, req.Company)
	if reason != "" {
		logCtx.Warn("Rejected upload.", "reason", reason)
		return failed(req.Filename, reason), nil
	}
	pages, err := f.pageCount(req.Data)
	if err != nil {
		logCtx.Warn("Rejected upload: not a PDF.", "error", err)
		return failed(req.Filename, "Please select a valid PDF file"), nil
	}

	rec, err := f.findTarget(ctx, target)
	if err != nil {
		return models.UploadResult{}, err
	}
	if rec == nil {
		logCtx.Warn("No invoice folder for upload.")
		return failed(req.Filename, fmt.Sprintf("no %s folder for invoice %q", target.direction, target.key)), nil
	}
	logCtx = logCtx.With("recordId", rec.ID)

	object := fmt.Sprintf("%s/%s.pdf", rec.ID, uuid.NewString())
	ref, err := f.blobs.Save(ctx, object, req.Data)
	if err != nil {
		logCtx.Error("Failed to save upload", "error", err)
		return models.UploadResult{}, fmt.Errorf("failed to save upload: %w", err)
	}

	res, err := f.attach(ctx, logCtx, rec, target, ref, pages)
	if err != nil || !res.Succeeded() {
		if delErr := f.blobs.Delete(ctx, ref); delErr != nil {
			logCtx.Warn("Failed to remove orphaned upload", "viewReference", ref, "error", delErr)
		}
	}
	if err != nil {
		return models.UploadResult{}, err
	}
	res.Filename = req.Filename
	return res, nil
}

// Attach files an object that already exists in storage, such as a PDF dropped
// straight into the uploads bucket.
func (f *DocumentsFunction) Attach(ctx context.Context, req AttachRequest) (models.UploadResult, error) {
	logCtx := slog.With("viewReference", req.ObjectRef, "category", req.Category, "invoiceKey", req.InvoiceKey)

	target, reason := parseTarget(req.Category, req.Direction, req.InvoiceKey, req.Company)
	if reason != "" {
		logCtx.Warn("Rejected attach.", "reason", reason)
		return failed(req.ObjectRef, reason), nil
	}

	r, err := f.blobs.Open(ctx, req.ObjectRef)
	if err != nil {
		return models.UploadResult{}, err
	}
	data, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to read %s: %w", req.ObjectRef, err)
	}
	pages, err := f.pageCount(data)
	if err != nil {
		logCtx.Warn("Rejected attach: not a PDF.", "error", err)
		return failed(req.ObjectRef, err.Error()), nil
	}

	rec, err := f.findTarget(ctx, target)
	if err != nil {
		return models.UploadResult{}, err
	}
	if rec == nil {
		logCtx.Warn("No invoice folder for object.")
		return failed(req.ObjectRef, fmt.Sprintf("no %s folder for invoice %q", target.direction, target.key)), nil
	}
	res, err := f.attach(ctx, logCtx.With("recordId", rec.ID), rec, target, req.ObjectRef, pages)
	if err != nil {
		return models.UploadResult{}, err
	}
	res.Filename = req.ObjectRef
	return res, nil
}

func (f *DocumentsFunction) attach(ctx context.Context, logCtx *slog.Logger, rec *models.DocumentRecord, target folderTarget, ref string, pages int) (models.UploadResult, error) {
	doc := models.ExtractedDocument{
		Category:      target.category,
		PageRange:     pageRange(pages),
		CompanyName:   rec.CompanyName,
		InvoiceNumber: target.key,
		ViewReference: ref,
	}
	updated, err := f.store.AppendExtracted(ctx, rec.ID, doc)
	if errors.Is(err, models.ErrNotFound) {
		// Deleted between listing and appending.
		logCtx.Warn("Invoice folder record disappeared before attach.")
		return failed("", fmt.Sprintf("record %s no longer exists", rec.ID)), nil
	}
	if err != nil {
		logCtx.Error("Failed to append extracted document", "error", err)
		return models.UploadResult{}, err
	}
	logCtx.Info("Upload attached.", "pages", pages)
	return models.UploadResult{
		Status:     models.UploadSucceeded,
		RecordID:   updated.ID,
		Categories: updated.Categories,
		Record:     updated,
	}, nil
}

// findTarget returns the first listed record of the target direction whose
// invoice key matches, or nil.
func (f *DocumentsFunction) findTarget(ctx context.Context, t folderTarget) (*models.DocumentRecord, error) {
	records, err := f.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.CompanyType != t.direction {
			continue
		}
		if t.company != "" && rec.CompanyName != t.company {
			continue
		}
		if folders.InvoiceKey(rec.InvoiceNumbers) == t.key {
			return &rec, nil
		}
	}
	return nil, nil
}

// parseTarget validates upload fields. It returns a non-empty reason when the
// request cannot be filed.
func parseTarget(category, direction, invoiceKey, company string) (folderTarget, string) {
	if category == "" {
		return folderTarget{}, "category is required"
	}
	d, err := models.ParseDirection(direction)
	if err != nil {
		return folderTarget{}, err.Error()
	}
	key := folders.InvoiceKey(folders.SplitInvoiceKey(strings.TrimSpace(invoiceKey)))
	if key == "" {
		return folderTarget{}, "invoice number is required"
	}
	if name, ok := categories.Canonical(d, category); ok {
		category = name
	}
	return folderTarget{category: category, direction: d, key: key, company: company}, ""
}

func failed(filename, reason string) models.UploadResult {
	return models.UploadResult{Status: models.UploadFailed, Filename: filename, Reason: reason}
}
