package pipeline

import "context"

// SourceFetcher reads the raw dataset bytes for a run.
type SourceFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
