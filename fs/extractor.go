package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
)

// Compile-time interface verification.
var _ revise.TextExtractor = (*Extractor)(nil)

// Extensions read by Extractor.
var textExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".text":     true,
	"":          true,
}

// Extractor reads UTF-8 markdown or plain text. Inline comment wrappers are
// lifted out of the text and returned as comments.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the document at path.
func (e *Extractor) Extract(ctx context.Context, path string) (*revise.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return nil, fmt.Errorf("%s: unsupported document type %q", path, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: not valid UTF-8", path)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text, comments := annotate.LiftComments(text)
	return &revise.Document{Text: text, Comments: comments}, nil
}
