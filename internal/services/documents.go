package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Lllllllleong/shipmentdocflow/internal/completeness"
	"github.com/Lllllllleong/shipmentdocflow/internal/folders"
	"github.com/Lllllllleong/shipmentdocflow/internal/gcp"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
	"github.com/Lllllllleong/shipmentdocflow/internal/store"
)

// DocumentsConfig holds configuration for the document browser functions.
type DocumentsConfig struct {
	ProjectID         string
	CollectionName    string
	UploadsBucket     string
	DefaultDirection  models.Direction
	DeleteConcurrency int
}

// BlobStore holds the PDF bytes that extracted documents point at.
type BlobStore interface {
	Save(ctx context.Context, object string, data []byte) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// DocumentsFunction holds dependencies for browsing, checking and editing
// invoice folders.
type DocumentsFunction struct {
	store     store.Store
	blobs     BlobStore
	config    DocumentsConfig
	pageCount func(data []byte) (int, error)
}

// LoadDocumentsConfig loads and validates the environment for the document functions.
func LoadDocumentsConfig() (*DocumentsConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	uploadsBucket := gcp.GetEnv("UPLOADS_BUCKET", "")
	if uploadsBucket == "" {
		return nil, fmt.Errorf("UPLOADS_BUCKET environment variable must be set")
	}
	direction, err := models.ParseDirection(gcp.GetEnv("DEFAULT_DIRECTION", string(models.DirectionImport)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_DIRECTION: %w", err)
	}
	concurrency, err := gcp.GetEnvInt("DELETE_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	return &DocumentsConfig{
		ProjectID:         projectID,
		CollectionName:    gcp.GetEnv("FIRESTORE_COLLECTION", "pdfs"),
		UploadsBucket:     uploadsBucket,
		DefaultDirection:  direction,
		DeleteConcurrency: concurrency,
	}, nil
}

// NewDocuments creates a DocumentsFunction backed by Firestore and Cloud Storage.
func NewDocuments(ctx context.Context) (*DocumentsFunction, error) {
	config, err := LoadDocumentsConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	clients, err := gcp.NewClients(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}

	f := NewDocumentsWith(
		store.NewFirestoreStore(clients.Firestore, config.CollectionName),
		gcp.NewBlobStore(clients.Storage, config.UploadsBucket),
		*config,
	)
	slog.Info("Document browser initialized.", "collection", config.CollectionName, "uploadsBucket", config.UploadsBucket)
	return f, nil
}

// NewDocumentsWith wires a DocumentsFunction from explicit collaborators.
func NewDocumentsWith(st store.Store, blobs BlobStore, config DocumentsConfig) *DocumentsFunction {
	if config.DeleteConcurrency <= 0 {
		config.DeleteConcurrency = 1
	}
	if !config.DefaultDirection.Valid() {
		config.DefaultDirection = models.DirectionImport
	}
	return &DocumentsFunction{
		store:     st,
		blobs:     blobs,
		config:    config,
		pageCount: pdfPageCount,
	}
}

// DefaultDirection is the direction used when a request names none.
func (f *DocumentsFunction) DefaultDirection() models.Direction {
	return f.config.DefaultDirection
}

// Dashboard lists the current records and summarises them for direction.
func (f *DocumentsFunction) Dashboard(ctx context.Context, direction models.Direction) (*completeness.Dashboard, error) {
	logCtx := slog.With("direction", direction)

	records, err := f.store.List(ctx)
	if err != nil {
		logCtx.Error("Failed to list records for dashboard", "error", err)
		return nil, err
	}
	dash, err := completeness.BuildDashboard(records, direction)
	if err != nil {
		return nil, err
	}
	logCtx.Info("Dashboard built.", "records", dash.TotalRecords, "incomplete", len(dash.Missing))
	return &dash, nil
}

// BrowseResult is a folder view. For a single invoice folder it also carries
// the checklist sections and the categories the folder still lacks.
type BrowseResult struct {
	View     folders.View            `json:"view"`
	Sections *folders.FolderSections `json:"sections,omitempty"`
	Missing  []string                `json:"missing,omitempty"`
}

// Browse lists the current records, rebuilds the folder tree and projects the
// view for cursor.
func (f *DocumentsFunction) Browse(ctx context.Context, cursor folders.Cursor) (*BrowseResult, error) {
	records, err := f.store.List(ctx)
	if err != nil {
		slog.Error("Failed to list records for browse", "error", err, "state", cursor.State.String())
		return nil, err
	}
	tree := folders.Aggregate(records)
	res := &BrowseResult{View: folders.Project(tree, cursor)}

	if cursor.State == folders.StateDocumentList {
		sections, err := folders.Sections(cursor.Direction, res.View.Documents)
		if err != nil {
			return nil, err
		}
		declared := tree.CategoriesFor(cursor.Company, cursor.InvoiceKey)
		missing, err := completeness.MissingForGroup(cursor.Direction, declared, res.View.Documents)
		if err != nil {
			return nil, err
		}
		res.Sections = &sections
		res.Missing = missing
	}
	return res, nil
}

// OpenView streams the PDF behind an extracted document's view reference.
func (f *DocumentsFunction) OpenView(ctx context.Context, ref string) (io.ReadCloser, error) {
	r, err := f.blobs.Open(ctx, ref)
	if err != nil {
		slog.Warn("Failed to open view reference", "viewReference", ref, "error", err)
		return nil, err
	}
	return r, nil
}
