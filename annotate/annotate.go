// Package annotate renders changes and conflicts into a base text using
// CriticMarkup and git-style conflict blocks.
package annotate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/revise"
)

// Markup delimiters.
const (
	InsertOpen  = "{++"
	InsertClose = "++}"
	DeleteOpen  = "{--"
	DeleteClose = "--}"
	SubstOpen   = "{~~"
	SubstSep    = "~>"
	SubstClose  = "~~}"
	NoteOpen    = "{>>"
	NoteClose   = "<<}"
)

// Errors returned when a splice cannot be applied to the base.
var (
	ErrOutOfRange = errors.New("range outside base text")
	ErrOverlap    = errors.New("overlapping edits")
	ErrMismatch   = errors.New("old text does not match base")
)

// Markup returns the inline annotation for a change.
func Markup(c revise.Change) string {
	switch c.Kind {
	case revise.Insert:
		return InsertOpen + c.NewText + InsertClose
	case revise.Delete:
		return DeleteOpen + c.OldText + DeleteClose
	case revise.Replace:
		return SubstOpen + c.OldText + SubstSep + c.NewText + SubstClose
	}
	panic(fmt.Sprintf("annotate: unhandled change kind %v", c.Kind))
}

// Renderer splices changes and conflict blocks into a base text.
type Renderer struct {
	plain bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPlainChanges applies changes without markup, accepting them outright.
// Conflicts are still rendered as blocks.
func WithPlainChanges() Option {
	return func(r *Renderer) {
		r.plain = true
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render splices changes and conflicts into base in a single pass.
// Every offset refers to base; none of the edits may overlap.
func (r *Renderer) Render(base string, changes []revise.Change, conflicts []revise.Conflict) (string, error) {
	splices := make([]splice, 0, len(changes)+len(conflicts))
	for _, c := range changes {
		text := c.NewText
		if !r.plain {
			text = Markup(c)
		}
		splices = append(splices, splice{
			label: fmt.Sprintf("%s %s", c.Reviewer, c.Kind),
			start: c.Start, end: c.End, old: c.OldText, text: text,
		})
	}
	for _, c := range conflicts {
		splices = append(splices, splice{
			label: c.ID,
			start: c.Start, end: c.End, old: c.Original,
			text: conflictBlock(base, c),
		})
	}
	return applySplices(base, splices)
}

// Render annotates changes and renders conflicts as blocks.
func Render(base string, changes []revise.Change, conflicts []revise.Conflict) (string, error) {
	return NewRenderer().Render(base, changes, conflicts)
}

// RenderAnnotated wraps every change in inline markup.
func RenderAnnotated(base string, changes []revise.Change) (string, error) {
	return NewRenderer().Render(base, changes, nil)
}

// RenderConflictMarkers replaces every conflict region with its block.
func RenderConflictMarkers(base string, conflicts []revise.Conflict) (string, error) {
	return NewRenderer().Render(base, nil, conflicts)
}

// Apply applies changes without markup.
func Apply(base string, changes []revise.Change) (string, error) {
	return NewRenderer(WithPlainChanges()).Render(base, changes, nil)
}

// splice replaces base[start:end] with text.
type splice struct {
	label      string
	start, end int
	old        string
	text       string
}

func (s splice) point() bool { return s.start == s.end }

// applySplices checks every splice against base and applies them from the highest
// start to the lowest, so offsets never refer to partially edited text.
func applySplices(base string, splices []splice) (string, error) {
	sort.SliceStable(splices, func(i, j int) bool {
		if splices[i].start != splices[j].start {
			return splices[i].start < splices[j].start
		}
		return splices[i].end < splices[j].end
	})

	// Ranges sorted by start overlap an earlier one only by starting before
	// the furthest end seen; a point overlaps a range starting on it.
	maxEnd, lastPoint := 0, -1
	for i, s := range splices {
		if s.start < 0 || s.end < s.start || s.end > len(base) {
			return "", fmt.Errorf("%s [%d,%d): %w", s.label, s.start, s.end, ErrOutOfRange)
		}
		if base[s.start:s.end] != s.old {
			return "", fmt.Errorf("%s [%d,%d): %w", s.label, s.start, s.end, ErrMismatch)
		}
		if i > 0 && (s.start < maxEnd || s.start == lastPoint) {
			return "", fmt.Errorf("%s [%d,%d) and %s: %w", s.label, s.start, s.end, splices[i-1].label, ErrOverlap)
		}
		if s.point() {
			lastPoint = s.start
		}
		maxEnd = max(maxEnd, s.end)
	}

	pieces := make([]string, 0, 2*len(splices)+1)
	tail := len(base)
	for i := len(splices) - 1; i >= 0; i-- {
		s := splices[i]
		pieces = append(pieces, base[s.end:tail], s.text)
		tail = s.start
	}
	pieces = append(pieces, base[:tail])

	var sb strings.Builder
	sb.Grow(len(base))
	for i := len(pieces) - 1; i >= 0; i-- {
		sb.WriteString(pieces[i])
	}
	return sb.String(), nil
}
