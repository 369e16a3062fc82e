// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.GitRunner = (*Runner)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// ShowFile returns the content of path at revision rev. Path is relative to
// the repository root at repoPath.
func (r *Runner) ShowFile(ctx context.Context, repoPath, rev, path string) (string, error) {
	spec := fmt.Sprintf("%s:%s", rev, filepath.ToSlash(path))
	return r.run(ctx, "show", repoPath, "show", spec)
}

// run executes git with args in repoPath and returns its standard output.
func (r *Runner) run(ctx context.Context, name, repoPath string, args ...string) (string, error) {
	args = append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s failed: %s", name, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s failed: %w", name, err)
	}
	return string(output), nil
}
