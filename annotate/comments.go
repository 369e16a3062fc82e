package annotate

import (
	"sort"
	"strings"

	"github.com/fwojciec/revise"
)

// Note returns the comment wrapper for c.
func Note(c revise.Comment) string {
	if c.Author == "" {
		return NoteOpen + c.Text + NoteClose
	}
	return NoteOpen + c.Author + ": " + c.Text + NoteClose
}

// AttachComments places each comment right after the first occurrence of its
// anchor in text. Comments without an anchor, or whose anchor is gone, are
// collected in a trailing block.
func AttachComments(text string, comments []revise.Comment) string {
	if len(comments) == 0 {
		return text
	}

	type placed struct {
		pos  int
		note string
	}
	var inline []placed
	var trailing []string
	for _, c := range comments {
		if c.Anchor != "" {
			if i := strings.Index(text, c.Anchor); i >= 0 {
				inline = append(inline, placed{pos: i + len(c.Anchor), note: Note(c)})
				continue
			}
		}
		trailing = append(trailing, Note(c))
	}

	// Equal positions keep comment order.
	sort.SliceStable(inline, func(i, j int) bool { return inline[i].pos < inline[j].pos })

	var sb strings.Builder
	last := 0
	for _, p := range inline {
		sb.WriteString(text[last:p.pos])
		sb.WriteString(p.note)
		last = p.pos
	}
	sb.WriteString(text[last:])

	if len(trailing) > 0 {
		out := sb.String()
		switch {
		case out == "" || strings.HasSuffix(out, "\n\n"):
		case strings.HasSuffix(out, "\n"):
			sb.WriteString("\n")
		default:
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.Join(trailing, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
