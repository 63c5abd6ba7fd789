package store

import (
	"context"
	"fmt"

	gcstorage "cloud.google.com/go/storage"
)

// GCSStore stores objects in a Google Cloud Storage bucket. Selected when
// the service runs on Google Cloud (USE_GCS=true); MinIO is the default
// everywhere else.
type GCSStore struct {
	client *gcstorage.Client
	bucket string
}

// NewGCSStore opens a GCS client using ambient application credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put implements ObjectStore.
func (g *GCSStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", path, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path), nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}
