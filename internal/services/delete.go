package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// DeleteRecord removes one record and everything extracted from it.
func (f *DocumentsFunction) DeleteRecord(ctx context.Context, recordID string) error {
	logCtx := slog.With("recordId", recordID)
	if err := f.store.Delete(ctx, recordID); err != nil {
		logCtx.Error("Failed to delete record", "error", err)
		return err
	}
	logCtx.Info("Record deleted.")
	return nil
}

// DeleteExtracted removes one extracted document from a record. The object
// behind the removed entry is deleted too when it lives in the uploads bucket;
// objects elsewhere belong to the upstream pipeline and are left alone.
func (f *DocumentsFunction) DeleteExtracted(ctx context.Context, recordID string, index int) error {
	logCtx := slog.With("recordId", recordID, "index", index)

	removed, err := f.store.DeleteExtracted(ctx, recordID, index)
	if err != nil {
		logCtx.Error("Failed to delete extracted document", "error", err)
		return err
	}
	logCtx.Info("Extracted document deleted.", "category", removed.Category)

	ref := removed.ViewReference
	if ref == "" {
		return nil
	}
	if err := f.blobs.Delete(ctx, ref); err != nil {
		if errors.Is(err, models.ErrUnsupportedReference) {
			logCtx.Info("Keeping object outside the uploads bucket.", "viewReference", ref)
			return nil
		}
		// The record no longer points at the object, so a leftover blob is
		// only storage waste.
		logCtx.Warn("Failed to delete uploaded object", "viewReference", ref, "error", err)
	}
	return nil
}

// DeleteInvoiceFolder removes every record of companyName that shares at
// least one invoice number with invoiceKey. For the empty key it removes the
// company's records without invoice numbers. Deletions run concurrently and
// the IDs removed before any failure are returned with the error.
func (f *DocumentsFunction) DeleteInvoiceFolder(ctx context.Context, companyName, invoiceKey string) ([]string, error) {
	logCtx := slog.With("company", companyName, "invoiceKey", invoiceKey)

	records, err := f.store.List(ctx)
	if err != nil {
		logCtx.Error("Failed to list records for folder delete", "error", err)
		return nil, err
	}

	targets := folderRecords(records, companyName, invoiceKey)
	if len(targets) == 0 {
		logCtx.Info("No records matched invoice folder.")
		return []string{}, nil
	}
	logCtx.Info("Deleting invoice folder.", "recordCount", len(targets))

	var (
		mu      sync.Mutex
		deleted = make([]string, 0, len(targets))
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.config.DeleteConcurrency)
	for _, id := range targets {
		eg.Go(func() error {
			if err := f.store.Delete(gctx, id); err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Error("One or more records failed to delete", "error", err, "deleted", len(deleted))
		return deleted, err
	}
	logCtx.Info("Invoice folder deleted.", "deleted", len(deleted))
	return deleted, nil
}

// folderRecords picks the records an invoice folder delete applies to, in
// listing order.
func folderRecords(records []models.DocumentRecord, companyName, invoiceKey string) []string {
	wanted := make(map[string]bool)
	for _, n := range folders.SplitInvoiceKey(invoiceKey) {
		wanted[n] = true
	}

	var ids []string
	for _, rec := range records {
		if rec.CompanyName != companyName {
			continue
		}
		if len(wanted) == 0 {
			if len(rec.InvoiceNumbers) == 0 {
				ids = append(ids, rec.ID)
			}
			continue
		}
		for _, n := range rec.InvoiceNumbers {
			if wanted[n] {
				ids = append(ids, rec.ID)
				break
			}
		}
	}
	return ids
}
