package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
)

// Clients bundles the Google Cloud clients shared by the document functions.
type Clients struct {
	Firestore *firestore.Client
	Storage   *storage.Client
}

// NewClients creates the Firestore client for projectID and a Storage client.
// It centralizes client creation for all functions.
func NewClients(ctx context.Context, projectID string) (*Clients, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	fsClient, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &Clients{Firestore: fsClient, Storage: storageClient}, nil
}

// Close releases both clients.
func (c *Clients) Close() error {
	fsErr := c.Firestore.Close()
	if err := c.Storage.Close(); err != nil {
		return err
	}
	return fsErr
}
