// Package gitdiff builds reviewer copies from unified diffs using bluekeyes/go-gitdiff.
package gitdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
)

// Compile-time interface verification.
var _ revise.TextExtractor = (*PatchExtractor)(nil)

var (
	// ErrNoTextPatch is returned when a patch changes no text file.
	ErrNoTextPatch = errors.New("patch contains no text changes")
	// ErrMultipleFiles is returned when a patch touches more than one file.
	ErrMultipleFiles = errors.New("patch changes more than one file")
)

// PatchExtractor produces a reviewer's copy by applying a unified diff to
// the base text. Comments added by the patch are lifted like in any other
// reviewer file.
type PatchExtractor struct {
	base string
}

// NewPatchExtractor creates a PatchExtractor that applies patches to base.
func NewPatchExtractor(base string) *PatchExtractor {
	return &PatchExtractor{base: base}
}

// Extract reads the patch at path and returns the patched document.
func (p *PatchExtractor) Extract(ctx context.Context, path string) (*revise.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	files, _, err := gitdiff.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	text, err := p.apply(files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	text, comments := annotate.LiftComments(text)
	return &revise.Document{Text: text, Comments: comments}, nil
}

// Apply patches the base with the given diff content and returns the new text.
func (p *PatchExtractor) Apply(patch string) (string, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return "", err
	}
	return p.apply(files)
}

func (p *PatchExtractor) apply(files []*gitdiff.File) (string, error) {
	var text []*gitdiff.File
	for _, f := range files {
		if f.IsBinary || f.IsDelete || len(f.TextFragments) == 0 {
			continue
		}
		text = append(text, f)
	}
	switch len(text) {
	case 0:
		return "", ErrNoTextPatch
	case 1:
	default:
		return "", ErrMultipleFiles
	}

	var buf bytes.Buffer
	if err := gitdiff.Apply(&buf, strings.NewReader(p.base), text[0]); err != nil {
		return "", err
	}
	return buf.String(), nil
}
