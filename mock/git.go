package mock

import (
	"context"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.GitRunner = (*GitRunner)(nil)

// GitRunner is a mock implementation of revise.GitRunner.
type GitRunner struct {
	ShowFileFn func(ctx context.Context, repoPath, rev, path string) (string, error)
}

func (g *GitRunner) ShowFile(ctx context.Context, repoPath, rev, path string) (string, error) {
	return g.ShowFileFn(ctx, repoPath, rev, path)
}
