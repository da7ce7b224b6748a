package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

const gsScheme = "gs://"

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads a positive integer environment variable, returning fallback
// when it is unset.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

// ObjectURI is the gs:// reference stored as an extracted document's view URL.
func ObjectURI(bucket, object string) string {
	return gsScheme + bucket + "/" + object
}

// ParseObjectURI splits a gs://bucket/object reference.
func ParseObjectURI(ref string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(ref, gsScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", models.ErrUnsupportedReference, ref)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q", models.ErrUnsupportedReference, ref)
	}
	return bucket, object, nil
}

// BlobStore saves uploaded PDFs to one bucket and opens any gs:// reference.
// Deletes are confined to its own bucket.
type BlobStore struct {
	client     *storage.Client
	bucket     string
	maxRetries int
	backoff    time.Duration
}

// NewBlobStore returns a BlobStore writing to bucket.
func NewBlobStore(client *storage.Client, bucket string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket, maxRetries: 4, backoff: time.Second}
}

// Save writes data to object only if it doesn't already exist and returns its
// gs:// reference. An existing object is not a failure: uploads are named
// uniquely, so a 412 means an earlier attempt already succeeded.
func (b *BlobStore) Save(ctx context.Context, object string, data []byte) (string, error) {
	ref := ObjectURI(b.bucket, object)
	backoff := b.backoff
	var lastErr error

	for i := 0; i < b.maxRetries; i++ {
		err := b.writeOnce(ctx, object, data)
		if err == nil {
			return ref, nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			slog.Info("SKIPPING: Object already exists.", "gcsObject", ref)
			return ref, nil
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", ref,
			"attempt", i+1,
			"maxRetries", b.maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return "", fmt.Errorf("upload for %s aborted during backoff: %w", ref, ctx.Err())
		}
	}
	return "", fmt.Errorf("upload for %s failed after all retries: %w", ref, lastErr)
}

func (b *BlobStore) writeOnce(ctx context.Context, object string, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(writeCtx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}

// ownObject returns the object name of ref when it points into b.bucket.
func (b *BlobStore) ownObject(ref string) (string, error) {
	bucket, object, err := ParseObjectURI(ref)
	if err != nil {
		return "", err
	}
	if bucket != b.bucket {
		return "", fmt.Errorf("%w: %q is outside bucket %s", models.ErrUnsupportedReference, ref, b.bucket)
	}
	return object, nil
}

// Open streams the object behind ref.
func (b *BlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, object, err := ParseObjectURI(ref)
	if err != nil {
		return nil, err
	}
	r, err := b.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("object %s: %w", ref, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", ref, err)
	}
	return r, nil
}

// Delete removes the object behind ref. Only objects in the store's own bucket
// can be deleted; any other ref fails with ErrUnsupportedReference. A missing
// object is not an error.
func (b *BlobStore) Delete(ctx context.Context, ref string) error {
	object, err := b.ownObject(ref)
	if err != nil {
		return err
	}
	err = b.client.Bucket(b.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}
