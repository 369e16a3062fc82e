package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var (
	_ revise.Explainer        = (*Explainer)(nil)
	_ revise.ConflictResolver = (*ConflictResolver)(nil)
	_ revise.Clipboard        = (*Clipboard)(nil)
)

// Explainer is a mock implementation of revise.Explainer.
type Explainer struct {
	ExplainFn func(ctx context.Context, c revise.Conflict, base string) (string, error)
}

func (e *Explainer) Explain(ctx context.Context, c revise.Conflict, base string) (string, error) {
	return e.ExplainFn(ctx, c, base)
}

// ConflictResolver is a mock implementation of revise.ConflictResolver.
type ConflictResolver struct {
	ResolveFn func(ctx context.Context, base string, record *revise.ConflictRecord) (*revise.ConflictRecord, error)
}

func (r *ConflictResolver) Resolve(ctx context.Context, base string, record *revise.ConflictRecord) (*revise.ConflictRecord, error) {
	return r.ResolveFn(ctx, base, record)
}

// Clipboard is a mock implementation of revise.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
