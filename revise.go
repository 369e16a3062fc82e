// Package revise provides domain types for merging reviewer edits of a manuscript.
package revise

import (
	"context"
	"fmt"
)

// ChangeKind identifies the shape of a Change.
type ChangeKind int

// Change kinds.
const (
	Insert ChangeKind = iota
	Delete
	Replace
)

// String returns the lowercase name used in conflict records.
func (k ChangeKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ChangeKind) MarshalText() ([]byte, error) {
	switch k {
	case Insert, Delete, Replace:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid change kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "insert":
		*k = Insert
	case "delete":
		*k = Delete
	case "replace":
		*k = Replace
	default:
		return fmt.Errorf("invalid change kind %q", text)
	}
	return nil
}

// Change is one atomic edit recovered by diffing a reviewer's text against the base.
// Start and End are half-open byte offsets into the base text.
type Change struct {
	Reviewer string     `json:"reviewer"`
	Kind     ChangeKind `json:"type"`
	Start    int        `json:"start"`
	End      int        `json:"end"`
	OldText  string     `json:"oldText"`
	NewText  string     `json:"newText"`
}

// NewInsert returns a zero-width insertion of text at pos.
func NewInsert(reviewer string, pos int, text string) Change {
	return Change{Reviewer: reviewer, Kind: Insert, Start: pos, End: pos, NewText: text}
}

// NewDelete returns a deletion of old starting at start.
func NewDelete(reviewer string, start int, old string) Change {
	return Change{Reviewer: reviewer, Kind: Delete, Start: start, End: start + len(old), OldText: old}
}

// NewReplace returns a substitution of old, starting at start, by new.
func NewReplace(reviewer string, start int, old, new string) Change {
	return Change{Reviewer: reviewer, Kind: Replace, Start: start, End: start + len(old), OldText: old, NewText: new}
}

// Validate reports whether the change is internally consistent.
// Records decoded from disk are not built through the constructors and must be checked.
func (c Change) Validate() error {
	if c.Start < 0 || c.End < c.Start {
		return fmt.Errorf("change [%d,%d): invalid range", c.Start, c.End)
	}
	if c.End-c.Start != len(c.OldText) {
		return fmt.Errorf("change [%d,%d): range does not match old text length %d", c.Start, c.End, len(c.OldText))
	}
	switch c.Kind {
	case Insert:
		if c.Start != c.End || c.NewText == "" {
			return fmt.Errorf("insert at %d: must be zero width with new text", c.Start)
		}
	case Delete:
		if c.Start == c.End || c.NewText != "" {
			return fmt.Errorf("delete [%d,%d): must be non-empty without new text", c.Start, c.End)
		}
	case Replace:
		if c.Start == c.End || c.NewText == "" {
			return fmt.Errorf("replace [%d,%d): must have old and new text", c.Start, c.End)
		}
	default:
		return fmt.Errorf("change [%d,%d): %s", c.Start, c.End, c.Kind)
	}
	return nil
}

// Overlaps reports whether two changes touch the same part of the base.
// An Insert occupies the single point Start; two Inserts overlap when they share it.
func (c Change) Overlaps(o Change) bool {
	switch {
	case c.Kind == Insert && o.Kind == Insert:
		return c.Start == o.Start
	case c.Kind == Insert:
		return o.Start <= c.Start && c.Start < o.End
	case o.Kind == Insert:
		return c.Start <= o.Start && o.Start < c.End
	default:
		return c.Start < o.End && o.Start < c.End
	}
}

// SameEdit reports whether two changes propose the identical edit, ignoring who made them.
func (c Change) SameEdit(o Change) bool {
	return c.Kind == o.Kind && c.Start == o.Start && c.End == o.End &&
		c.OldText == o.OldText && c.NewText == o.NewText
}

// RunOp classifies a run of tokens in a raw diff.
type RunOp int

// Run operations.
const (
	Unchanged RunOp = iota
	Added
	Removed
)

// Run is a maximal stretch of tokens sharing one RunOp, in document order.
type Run struct {
	Op   RunOp
	Text string
}

// Granularity splits text into the units a diff compares.
type Granularity interface {
	// Name identifies the strategy in configuration and journals.
	Name() string
	// Tokenize splits s into tokens whose concatenation is exactly s.
	Tokenize(s string) []string
}

// Document is the plain text and free-standing remarks extracted from a reviewer's file.
type Document struct {
	Text     string
	Comments []Comment
}

// Comment is a reviewer remark that is not an edit.
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	// Anchor is base text the remark follows; empty attaches it at the end.
	Anchor string `json:"anchor,omitempty"`
}

// TextExtractor turns a reviewer's file into plain text and comments.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*Document, error)
}

// GitRunner provides access to git for loading a base text from history.
type GitRunner interface {
	// ShowFile returns the content of path at revision rev in the repository at repoPath.
	ShowFile(ctx context.Context, repoPath, rev, path string) (string, error)
}

// Explainer describes, in prose, how the alternatives of a conflict differ.
// Its output is advisory and never selects an alternative.
type Explainer interface {
	Explain(ctx context.Context, c Conflict, base string) (string, error)
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
