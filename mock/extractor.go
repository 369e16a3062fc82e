package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of revise.TextExtractor.
type TextExtractor struct {
	ExtractFn func(ctx context.Context, path string) (*revise.Document, error)
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (*revise.Document, error) {
	return e.ExtractFn(ctx, path)
}
