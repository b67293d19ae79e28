// Package content supplies the raw text a job synthesizes, as produced by
// the upstream document-parsing pipeline.
package content

import (
	"context"
	"fmt"

	"github.com/book-expert/audiobook-service/internal/core"
)

// StoreContentSource implements core.ContentSource by reading extracted
// book text from an object-store bucket, keyed by the job's source
// reference.
type StoreContentSource struct {
	store core.ObjectStore
}

// New creates a content source backed by the given text bucket.
func New(store core.ObjectStore) *StoreContentSource {
	return &StoreContentSource{
		store: store,
	}
}

// GetText downloads the source text for sourceRef. A missing object
// propagates core.ErrNotFound.
func (s *StoreContentSource) GetText(ctx context.Context, sourceRef string) (string, error) {
	data, err := s.store.Download(ctx, sourceRef)
	if err != nil {
		return "", fmt.Errorf("failed to load source text '%s': %w", sourceRef, err)
	}

	return string(data), nil
}
