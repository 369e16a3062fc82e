// Package protect masks structural markup (anchors, cross-references, math,
// citations) and existing CriticMarkup so a diff can never split or
// half-delete it.
package protect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/revise"
)

var (
	// {#fig:label} attribute blocks, optionally carrying more attributes.
	anchorPattern = regexp.MustCompile(`\{#(?:fig|tbl|eq|sec|lst):[^}\s]+[^}]*\}`)

	// @fig:label style references, with pandoc-crossref prefix modifiers.
	crossRefPattern = regexp.MustCompile(`[+!\-]?@(?:fig|tbl|eq|sec|lst):[A-Za-z0-9_][A-Za-z0-9_:.\-]*[A-Za-z0-9_]|[+!\-]?@(?:fig|tbl|eq|sec|lst):[A-Za-z0-9_]`)

	// $$display$$ first so "$$" is never read as two empty inline spans.
	// Inline math needs a non-space after the opening and before the closing
	// dollar, which keeps "$5 and $6" out.
	mathPattern = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\$[^\s$](?:[^$\n]*[^\s$])?\$`)

	// [@key], [see @key, p. 3; @other].
	bracketCitationPattern = regexp.MustCompile(`\[[^\[\]\n]*@[^\[\]\n]+\]`)

	// Bare @key preceded by start of text, whitespace or an opening parenthesis.
	bareCitationPattern = regexp.MustCompile(`(?:^|[\s(])(@[A-Za-z0-9_](?:[A-Za-z0-9_:.\-]*[A-Za-z0-9_])?)`)
)

// kindLetters tags placeholders by kind. Letters only, so a placeholder is
// a single word token for every granularity.
var kindLetters = map[revise.SpanKind]byte{
	revise.Anchor:     'A',
	revise.CrossRef:   'X',
	revise.Math:       'M',
	revise.Citation:   'C',
	revise.Annotation: 'N',
}

// Guard masks texts for one merge run. Every text masked by the same Guard
// maps identical markup to the identical placeholder, so masked base and
// reviewer texts line up token for token.
type Guard struct {
	prefix string
	spans  []revise.ProtectedSpan
	index  map[spanKey]int
}

type spanKey struct {
	kind     revise.SpanKind
	original string
}

// NewGuard creates a Guard whose placeholders cannot collide with any text in corpus.
func NewGuard(corpus ...string) *Guard {
	prefix := "Zq"
	for containsAny(corpus, prefix) {
		prefix += "q"
	}
	return &Guard{prefix: prefix, index: make(map[spanKey]int)}
}

func containsAny(corpus []string, s string) bool {
	for _, text := range corpus {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// Mask replaces protected markup in text with placeholders. It returns the
// masked text and every span the guard has issued so far.
//
// CriticMarkup wrappers already in the text are masked whole before anything
// else, so the only wrappers Unmask sees are the ones rendered in this run.
func (g *Guard) Mask(text string) (string, []revise.ProtectedSpan) {
	text = markupPattern.ReplaceAllStringFunc(text, func(m string) string {
		return g.placeholder(revise.Annotation, m)
	})
	text = anchorPattern.ReplaceAllStringFunc(text, func(m string) string {
		return g.placeholder(revise.Anchor, m)
	})
	text = crossRefPattern.ReplaceAllStringFunc(text, func(m string) string {
		return g.placeholder(revise.CrossRef, m)
	})
	text = mathPattern.ReplaceAllStringFunc(text, func(m string) string {
		return g.placeholder(revise.Math, m)
	})
	text = bracketCitationPattern.ReplaceAllStringFunc(text, func(m string) string {
		return g.placeholder(revise.Citation, m)
	})
	text = g.maskBareCitations(text)
	return text, g.Spans()
}

// maskBareCitations masks only the @key group so the preceding delimiter stays.
func (g *Guard) maskBareCitations(text string) string {
	matches := bareCitationPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[2], m[3]
		sb.WriteString(text[last:start])
		sb.WriteString(g.placeholder(revise.Citation, text[start:end]))
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// placeholder returns the token standing in for original, issuing one if needed.
func (g *Guard) placeholder(kind revise.SpanKind, original string) string {
	key := spanKey{kind: kind, original: original}
	if i, ok := g.index[key]; ok {
		return g.spans[i].Placeholder
	}
	span := revise.ProtectedSpan{
		Kind:        kind,
		Placeholder: fmt.Sprintf("%s%c%d%s", g.prefix, kindLetters[kind], len(g.spans), g.prefix),
		Original:    original,
	}
	if kind == revise.Math {
		span.Plain = Simplify(original)
	}
	g.index[key] = len(g.spans)
	g.spans = append(g.spans, span)
	return span.Placeholder
}

// Spans returns a copy of every span issued so far, in issue order.
func (g *Guard) Spans() []revise.ProtectedSpan {
	out := make([]revise.ProtectedSpan, len(g.spans))
	copy(out, g.spans)
	return out
}

// Mask masks a single text with a fresh Guard.
func Mask(text string) (string, []revise.ProtectedSpan) {
	return NewGuard(text).Mask(text)
}
