package protect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/revise"
)

// markupPattern matches the inline annotation wrappers placeholders may end up in.
// Groups: 1 insertion, 2 deletion, 3-4 substitution old/new, 5 comment.
var markupPattern = regexp.MustCompile(
	`\{\+\+([\s\S]*?)\+\+\}|` +
		`\{--([\s\S]*?)--\}|` +
		`\{~~([\s\S]*?)~>([\s\S]*?)~~\}|` +
		`\{>>([\s\S]*?)<<\}`,
)

// Unmask restores every placeholder in text to its original markup.
//
// Placeholders are restored in place, except inside a deletion or the old
// side of a substitution: there the placeholder is taken out of the wrapper
// and its original is emitted right after the wrapper, so the structural
// marker is never struck out. A placeholder that the substitution's new side
// also carries is simply dropped from the old side.
func Unmask(text string, spans []revise.ProtectedSpan) string {
	if len(spans) == 0 {
		return text
	}
	r := newRestorer(spans)
	matches := markupPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return r.expand(text)
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		sb.WriteString(r.expand(text[last:m[0]]))
		switch {
		case m[2] >= 0:
			sb.WriteString("{++" + r.expand(text[m[2]:m[3]]) + "++}")
		case m[4] >= 0:
			kept, hoisted := r.strip(text[m[4]:m[5]], "")
			if kept != "" {
				sb.WriteString("{--" + kept + "--}")
			}
			sb.WriteString(hoisted)
		case m[6] >= 0:
			newPart := text[m[8]:m[9]]
			kept, hoisted := r.strip(text[m[6]:m[7]], newPart)
			if kept == "" {
				sb.WriteString("{++" + r.expand(newPart) + "++}")
			} else {
				sb.WriteString("{~~" + kept + "~>" + r.expand(newPart) + "~~}")
			}
			sb.WriteString(hoisted)
		case m[10] >= 0:
			sb.WriteString("{>>" + r.expand(text[m[10]:m[11]]) + "<<}")
		}
		last = m[1]
	}
	sb.WriteString(r.expand(text[last:]))
	return sb.String()
}

// Restore replaces every placeholder in place, ignoring annotation markup.
func Restore(text string, spans []revise.ProtectedSpan) string {
	if len(spans) == 0 {
		return text
	}
	return newRestorer(spans).expand(text)
}

// restorer maps placeholders back to fully expanded originals.
type restorer struct {
	pattern  *regexp.Regexp
	original map[string]string
	expanded map[string]string
}

func newRestorer(spans []revise.ProtectedSpan) *restorer {
	placeholders := make([]string, 0, len(spans))
	r := &restorer{
		original: make(map[string]string, len(spans)),
		expanded: make(map[string]string, len(spans)),
	}
	for _, s := range spans {
		r.original[s.Placeholder] = s.Original
		placeholders = append(placeholders, regexp.QuoteMeta(s.Placeholder))
	}
	// Longest first so no placeholder matches as a prefix of another.
	sort.Slice(placeholders, func(i, j int) bool {
		return len(placeholders[i]) > len(placeholders[j])
	})
	r.pattern = regexp.MustCompile(strings.Join(placeholders, "|"))
	return r
}

// expand replaces placeholders in s. Citation originals may themselves hold
// cross-reference placeholders, so originals are expanded recursively.
func (r *restorer) expand(s string) string {
	return r.pattern.ReplaceAllStringFunc(s, r.lookup)
}

func (r *restorer) lookup(placeholder string) string {
	if full, ok := r.expanded[placeholder]; ok {
		return full
	}
	// Mark as in progress; a self-referencing original expands once.
	r.expanded[placeholder] = r.original[placeholder]
	full := r.expand(r.original[placeholder])
	r.expanded[placeholder] = full
	return full
}

// strip removes placeholders from a struck-out segment. Placeholders not
// present in live are returned expanded, in order, for hoisting.
func (r *restorer) strip(segment, live string) (kept, hoisted string) {
	var hb strings.Builder
	kept = r.pattern.ReplaceAllStringFunc(segment, func(placeholder string) string {
		if !strings.Contains(live, placeholder) {
			hb.WriteString(r.lookup(placeholder))
		}
		return ""
	})
	return kept, hb.String()
}

// occurrences returns the [start, end) positions of top-level placeholders in s.
func (r *restorer) occurrences(s string) [][]int {
	return r.pattern.FindAllStringIndex(s, -1)
}

// WithoutComments removes comment placeholders from text and reports whether
// there were any.
func WithoutComments(text string, spans []revise.ProtectedSpan) (string, bool) {
	comment := make(map[string]bool)
	for _, s := range spans {
		if s.Kind == revise.Annotation && strings.HasPrefix(s.Original, "{>>") {
			comment[s.Placeholder] = true
		}
	}
	if len(comment) == 0 {
		return text, false
	}
	found := false
	rest := newRestorer(spans).pattern.ReplaceAllStringFunc(text, func(placeholder string) string {
		if comment[placeholder] {
			found = true
			return ""
		}
		return placeholder
	})
	return rest, found
}
