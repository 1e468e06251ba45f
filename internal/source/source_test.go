package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://data-bucket/raw/sales.csv", "data-bucket", "raw/sales.csv", false},
		{"gs://data-bucket/sales.csv", "data-bucket", "sales.csv", false},
		{"gs://data-bucket/", "", "", true},
		{"gs://data-bucket", "", "", true},
		{"/tmp/sales.csv", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := SplitGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("SplitGCSURI(%q) = (%q, %q), want (%q, %q)",
					tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestIsGCSURI(t *testing.T) {
	if !IsGCSURI("gs://bucket/object.csv") {
		t.Error("Expected gs:// URI to be recognized")
	}
	if IsGCSURI("./sales.csv") {
		t.Error("Expected local path to not be a GCS URI")
	}
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	content := []byte("invoice_id,branch\n1,A\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	data, err := Fetcher{}.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("Fetch returned %q, want %q", data, content)
	}
}

func TestFetch_MissingLocalFile(t *testing.T) {
	_, err := Fetcher{}.Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
