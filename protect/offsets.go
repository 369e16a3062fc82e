package protect

import (
	"sort"

	"github.com/fwojciec/revise"
)

// Mapper translates positions and texts in a masked base back to the raw base.
type Mapper struct {
	r *restorer
	// ends[i] is the masked offset just past the i-th placeholder and
	// deltas[i] the cumulative growth of the raw text up to that point.
	starts []int
	ends   []int
	deltas []int
}

// Mapper returns a Mapper for maskedBase, which must have been masked by g.
func (g *Guard) Mapper(maskedBase string) *Mapper {
	return NewMapper(maskedBase, g.Spans())
}

// NewMapper returns a Mapper for a masked text and the spans used to mask it.
func NewMapper(masked string, spans []revise.ProtectedSpan) *Mapper {
	m := &Mapper{}
	if len(spans) == 0 {
		return m
	}
	m.r = newRestorer(spans)
	delta := 0
	for _, loc := range m.r.occurrences(masked) {
		placeholder := masked[loc[0]:loc[1]]
		delta += len(m.r.lookup(placeholder)) - len(placeholder)
		m.starts = append(m.starts, loc[0])
		m.ends = append(m.ends, loc[1])
		m.deltas = append(m.deltas, delta)
	}
	return m
}

// Translate maps a masked-base byte offset to the raw-base byte offset.
// An offset inside a placeholder maps to the start of its original.
func (m *Mapper) Translate(offset int) int {
	// Number of placeholders that end at or before offset.
	i := sort.SearchInts(m.ends, offset+1)
	base := 0
	if i > 0 {
		base = m.deltas[i-1]
	}
	if i < len(m.starts) && m.starts[i] < offset {
		return m.starts[i] + base
	}
	return offset + base
}

// Change maps c into raw-base coordinates with its texts restored.
func (m *Mapper) Change(c revise.Change) revise.Change {
	c.Start = m.Translate(c.Start)
	c.End = m.Translate(c.End)
	c.OldText = m.text(c.OldText)
	c.NewText = m.text(c.NewText)
	return c
}

// Changes maps every change in cs.
func (m *Mapper) Changes(cs []revise.Change) []revise.Change {
	if cs == nil {
		return nil
	}
	out := make([]revise.Change, len(cs))
	for i, c := range cs {
		out[i] = m.Change(c)
	}
	return out
}

// Conflict maps c and its members into raw-base coordinates.
func (m *Mapper) Conflict(c revise.Conflict) revise.Conflict {
	c.Start = m.Translate(c.Start)
	c.End = m.Translate(c.End)
	c.Original = m.text(c.Original)
	c.Changes = m.Changes(c.Changes)
	return c
}

// Conflicts maps every conflict in cs.
func (m *Mapper) Conflicts(cs []revise.Conflict) []revise.Conflict {
	if cs == nil {
		return nil
	}
	out := make([]revise.Conflict, len(cs))
	for i, c := range cs {
		out[i] = m.Conflict(c)
	}
	return out
}

func (m *Mapper) text(s string) string {
	if m.r == nil {
		return s
	}
	return m.r.expand(s)
}
