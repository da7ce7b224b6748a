package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/shipmentdocflow/internal/services"
)

var (
	documentsInstance *services.DocumentsFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function for GCS object finalize events.
	functions.CloudEvent("IngestUpload", ingestUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestUpload files a PDF dropped into the uploads bucket.
func ingestUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		documentsInstance, initErr = services.NewDocuments(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Rejected uploads are logged and not retried; only infrastructure errors
	// mark the invocation as failed.
	if _, err := documentsInstance.Ingest(ctx, gcsEvent); err != nil {
		return err
	}
	return nil
}
