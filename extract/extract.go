// Package extract recovers attributed edits by diffing a reviewer's text against the base.
package extract

import (
	"strings"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/lcs"
	"github.com/fwojciec/revise/protect"
)

// Segment is one step of a paired diff. Unchanged segments carry the same
// text on both sides; a changed segment with both sides set is a substitution.
type Segment struct {
	Changed bool
	Old     string
	New     string
}

// Pair folds a Removed run immediately followed by an Added run into one
// changed segment.
//
// This is a heuristic: the diff only says those tokens were dropped and
// those were added at the same place. Two unrelated edits that land next to
// each other are reported as a single substitution.
func Pair(runs []revise.Run) []Segment {
	segments := make([]Segment, 0, len(runs))
	for i := 0; i < len(runs); i++ {
		r := runs[i]
		switch r.Op {
		case revise.Unchanged:
			segments = append(segments, Segment{Old: r.Text, New: r.Text})
		case revise.Removed:
			s := Segment{Changed: true, Old: r.Text}
			if i+1 < len(runs) && runs[i+1].Op == revise.Added {
				s.New = runs[i+1].Text
				i++
			}
			segments = append(segments, s)
		case revise.Added:
			segments = append(segments, Segment{Changed: true, New: r.Text})
		}
	}
	return segments
}

// Changes walks paired segments and emits changes in base coordinates.
// The cursor advances over unchanged and removed text only; added text has
// no extent in the base.
func Changes(segments []Segment, reviewerID string) []revise.Change {
	var changes []revise.Change
	basePos := 0
	for _, s := range segments {
		switch {
		case !s.Changed:
		case s.Old != "" && s.New != "":
			changes = append(changes, revise.NewReplace(reviewerID, basePos, s.Old, s.New))
		case s.Old != "":
			changes = append(changes, revise.NewDelete(reviewerID, basePos, s.Old))
		case s.New != "":
			changes = append(changes, revise.NewInsert(reviewerID, basePos, s.New))
		}
		basePos += len(s.Old)
	}
	return changes
}

// Extractor diffs masked texts. Its spans are the ones issued by the guard
// that masked them, used to recognise math a reviewer's editor flattened.
type Extractor struct {
	spans []revise.ProtectedSpan
}

// NewExtractor creates an Extractor for texts masked with spans.
func NewExtractor(spans []revise.ProtectedSpan) *Extractor {
	return &Extractor{spans: spans}
}

// Extract returns the changes that turn base into reviewer, attributed to reviewerID.
// Identical inputs yield no changes.
func (e *Extractor) Extract(base, reviewer, reviewerID string, g revise.Granularity) []revise.Change {
	if base == reviewer {
		return nil
	}
	runs := lcs.Diff(g.Tokenize(base), g.Tokenize(reviewer))
	changes := Changes(Pair(runs), reviewerID)

	out := changes[:0]
	for _, c := range changes {
		if e.flattenedMath(c) || e.liftedComment(c) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flattenedMath reports whether c only replaces math with its plain rendering.
func (e *Extractor) flattenedMath(c revise.Change) bool {
	if c.Kind != revise.Replace {
		return false
	}
	old, hasMath := protect.Flatten(c.OldText, e.spans)
	if !hasMath {
		return false
	}
	return protect.PlainKey(old) == protect.PlainKey(protect.Restore(c.NewText, e.spans))
}

// liftedComment reports whether c only drops comments that were lifted out
// of the reviewer text before diffing.
func (e *Extractor) liftedComment(c revise.Change) bool {
	if c.Kind == revise.Insert {
		return false
	}
	rest, found := protect.WithoutComments(c.OldText, e.spans)
	return found && strings.TrimSpace(rest) == strings.TrimSpace(c.NewText)
}

// Extract diffs two unmasked texts.
func Extract(base, reviewer, reviewerID string, g revise.Granularity) []revise.Change {
	return NewExtractor(nil).Extract(base, reviewer, reviewerID, g)
}
