package services

import (
	"context"
	"log/slog"

	"github.com/Lllllllleong/shipmentdocflow/internal/gcp"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Object metadata keys that mark a bucket upload for filing.
const (
	MetaCategory    = "category"
	MetaCompanyType = "companyType"
	MetaInvoiceKey  = "invoiceKey"
	MetaCompanyName = "companyName"
)

// GCSEvent is the payload of a GCS object finalize event.
type GCSEvent struct {
	Bucket   string            `json:"bucket"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
}

// Ingest files a finalized object into its invoice folder. Objects without a
// category in their metadata are skipped; Upload writes its own objects without
// metadata so they are not filed twice.
func (f *DocumentsFunction) Ingest(ctx context.Context, e GCSEvent) (*models.UploadResult, error) {
	ref := gcp.ObjectURI(e.Bucket, e.Name)
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	category := e.Metadata[MetaCategory]
	if category == "" {
		logCtx.Info("Object has no category metadata. Skipping.")
		return nil, nil
	}
	direction := e.Metadata[MetaCompanyType]
	if direction == "" {
		direction = string(f.config.DefaultDirection)
	}

	res, err := f.Attach(ctx, AttachRequest{
		Category:   category,
		Direction:  direction,
		InvoiceKey: e.Metadata[MetaInvoiceKey],
		Company:    e.Metadata[MetaCompanyName],
		ObjectRef:  ref,
	})
	if err != nil {
		logCtx.Error("Failed to ingest object", "error", err)
		return nil, err
	}
	if !res.Succeeded() {
		logCtx.Warn("Object was not filed.", "reason", res.Reason)
	}
	return &res, nil
}
