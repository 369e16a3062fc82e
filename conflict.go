package revise

import (
	"context"
	"strings"
	"time"
)

// KeepOriginal is the Resolved value that rejects every alternative of a conflict.
const KeepOriginal = "(original)"

// Conflict is a group of changes from at least two reviewers whose ranges
// overlap and whose content differs.
type Conflict struct {
	ID       string   `json:"id"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Original string   `json:"original"`
	Changes  []Change `json:"changes"`
	// Resolved is the winning reviewer, KeepOriginal, or nil while undecided.
	Resolved *string `json:"resolved"`
}

// IsResolved reports whether a winner has been chosen.
func (c Conflict) IsResolved() bool {
	return c.Resolved != nil
}

// Alternative is everything one reviewer proposes within a conflict.
type Alternative struct {
	Reviewer string
	Changes  []Change
}

// Kind is the kind shared by every change of the alternative, or Replace
// when they differ.
func (a Alternative) Kind() ChangeKind {
	if len(a.Changes) == 0 {
		return Replace
	}
	kind := a.Changes[0].Kind
	for _, ch := range a.Changes[1:] {
		if ch.Kind != kind {
			return Replace
		}
	}
	return kind
}

// Text returns the conflict region as it reads after the alternative's
// changes, which must fall inside [c.Start, c.End].
func (a Alternative) Text(c Conflict) string {
	var sb strings.Builder
	pos := 0
	for _, ch := range a.Changes {
		from := min(max(ch.Start-c.Start, pos), len(c.Original))
		to := min(max(ch.End-c.Start, from), len(c.Original))
		sb.WriteString(c.Original[pos:from])
		sb.WriteString(ch.NewText)
		pos = to
	}
	sb.WriteString(c.Original[pos:])
	return sb.String()
}

// Alternatives groups the members by reviewer in order of first appearance.
func (c Conflict) Alternatives() []Alternative {
	var out []Alternative
	index := make(map[string]int)
	for _, ch := range c.Changes {
		i, ok := index[ch.Reviewer]
		if !ok {
			i = len(out)
			index[ch.Reviewer] = i
			out = append(out, Alternative{Reviewer: ch.Reviewer})
		}
		out[i].Changes = append(out[i].Changes, ch)
	}
	return out
}

// Winners returns every member from the reviewer chosen by Resolved. It is
// empty when the conflict is unresolved or resolved to the original text.
func (c Conflict) Winners() []Change {
	if c.Resolved == nil {
		return nil
	}
	var out []Change
	for _, ch := range c.Changes {
		if ch.Reviewer == *c.Resolved {
			out = append(out, ch)
		}
	}
	return out
}

// Reviewers returns the distinct reviewers of the member changes, in member order.
func (c Conflict) Reviewers() []string {
	alts := c.Alternatives()
	out := make([]string, 0, len(alts))
	for _, a := range alts {
		out = append(out, a.Reviewer)
	}
	return out
}

// SameAs reports whether o covers the same range with the same alternatives,
// regardless of ID, member order, or resolution.
func (c Conflict) SameAs(o Conflict) bool {
	if c.Start != o.Start || c.End != o.End || len(c.Changes) != len(o.Changes) {
		return false
	}
	for _, a := range c.Changes {
		found := false
		for _, b := range o.Changes {
			if a.Reviewer == b.Reviewer && a.SameEdit(b) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ConflictRecord is the persisted list of unresolved conflicts for one base document.
type ConflictRecord struct {
	Base      string     `json:"base"`
	Merged    time.Time  `json:"merged"`
	Conflicts []Conflict `json:"conflicts"`
}

// Unresolved returns the conflicts that still need a decision.
func (r *ConflictRecord) Unresolved() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if !c.IsResolved() {
			out = append(out, c)
		}
	}
	return out
}

// Resolved returns the conflicts that have a decision.
func (r *ConflictRecord) Resolved() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.IsResolved() {
			out = append(out, c)
		}
	}
	return out
}

// ConflictStore persists conflict records between invocations.
type ConflictStore interface {
	// Load returns the record at path. A missing file yields an empty record.
	Load(path string) (*ConflictRecord, error)
	Save(path string, record *ConflictRecord) error
}

// ConflictResolver lets a human pick winners for the conflicts in a record.
type ConflictResolver interface {
	Resolve(ctx context.Context, base string, record *ConflictRecord) (*ConflictRecord, error)
}
