package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Fetcher reads the raw dataset bytes for the pipeline. It understands
// both local file paths and gs:// URIs, so the same pipeline binary can
// run against a checked-out CSV or the bucket copy.
type Fetcher struct{}

// Fetch returns the full contents of the dataset at uri.
func (Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if IsGCSURI(uri) {
		return fetchFromGCS(ctx, uri)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("source: reading local file %q: %w", uri, err)
	}
	return data, nil
}

// IsGCSURI reports whether uri points into Google Cloud Storage.
func IsGCSURI(uri string) bool {
	return strings.HasPrefix(uri, "gs://")
}

// SplitGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func SplitGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("source: invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("source: invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}

func fetchFromGCS(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := SplitGCSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("source: reading bytes: %w", err)
	}

	return data, nil
}

// Upload pushes a local dataset file to a GCS bucket under the given
// object name. Assumes Application Default Credentials are configured.
func Upload(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("source: open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("source: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("source: copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("source: finalize upload: %w", err)
	}

	return nil
}
