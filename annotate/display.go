package annotate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/revise"
)

// Conflict block delimiters.
const (
	BlockOpen  = "<<<<<<<"
	BlockSep   = "======="
	BlockClose = ">>>>>>>"
)

// InsertionPoint stands in for the empty original of an insertion conflict.
const InsertionPoint = "(insertion point)"

// Display bounds.
const (
	ContextBytes = 40
	PreviewRunes = 60
)

// conflictBlock renders c as a bounded block on lines of its own. The block
// replaces the conflict region, so the original appears only in the header.
func conflictBlock(base string, c revise.Conflict) string {
	var sb strings.Builder
	if c.Start > 0 && base[c.Start-1] != '\n' {
		sb.WriteString("\n")
	}
	original := oneLine(c.Original)
	if c.Original == "" {
		original = InsertionPoint
	}
	fmt.Fprintf(&sb, "%s %s (original: %s)\n", BlockOpen, c.ID, original)
	for _, alt := range c.Alternatives() {
		fmt.Fprintf(&sb, "%s %s (%s)\n", BlockSep, alt.Reviewer, alt.Kind())
		if text := alt.Text(c); text != "" {
			sb.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	fmt.Fprintf(&sb, "%s %s", BlockClose, c.ID)
	if c.End >= len(base) || base[c.End] != '\n' {
		sb.WriteString("\n")
	}
	return sb.String()
}

// Display formats conflicts for a terminal. Zero fields fall back to
// ContextBytes and PreviewRunes.
type Display struct {
	Context int // Bytes of base text shown on either side of a conflict
	Preview int // Runes of each alternative shown before truncation
}

// FormatConflictForDisplay renders a conflict with the default bounds.
func FormatConflictForDisplay(c revise.Conflict, base string) string {
	return Display{}.Format(c, base)
}

// Preview flattens s onto one line and truncates it to PreviewRunes runes.
func Preview(s string) string {
	return Display{}.Truncate(s)
}

// Format renders a conflict for interactive resolution: surrounding
// context, the original text and the numbered alternatives. Alternative 0
// always keeps the original.
func (d Display) Format(c revise.Conflict, base string) string {
	before, original, after := d.Window(base, c.Start, c.End)
	start := clamp(c.Start, 0, len(base))
	end := start + len(original)
	shown := original
	if original == "" {
		shown = InsertionPoint
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Conflict %s (bytes %d-%d)\n", c.ID, c.Start, c.End)
	sb.WriteString("Context: ")
	if start-len(before) > 0 {
		sb.WriteString("…")
	}
	fmt.Fprintf(&sb, "%s[%s]%s", oneLine(before), oneLine(original), oneLine(after))
	if end+len(after) < len(base) {
		sb.WriteString("…")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Original: %s\n", oneLine(shown))
	sb.WriteString("  0) keep original\n")
	for i, alt := range c.Alternatives() {
		fmt.Fprintf(&sb, "  %d) %s (%s)", i+1, alt.Reviewer, alt.Kind())
		if text := alt.Text(c); text != "" {
			fmt.Fprintf(&sb, ": %s", d.Truncate(text))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Window splits the base around [start, end) into up to Context bytes of
// text on either side, the slice itself, and the text after it. Offsets are
// clamped to the base and the window never splits a rune.
func (d Display) Window(base string, start, end int) (before, original, after string) {
	context := d.Context
	if context <= 0 {
		context = ContextBytes
	}
	start = clamp(start, 0, len(base))
	end = clamp(end, start, len(base))

	from := max(0, start-context)
	for from < start && !utf8.RuneStart(base[from]) {
		from++
	}
	to := min(len(base), end+context)
	for to > end && to < len(base) && !utf8.RuneStart(base[to]) {
		to--
	}
	return base[from:start], base[start:end], base[end:to]
}

// Truncate flattens s onto one line and cuts it to the preview bound.
func (d Display) Truncate(s string) string {
	limit := d.Preview
	if limit <= 0 {
		limit = PreviewRunes
	}
	s = oneLine(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "…"
		}
		n++
	}
	return s
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
