package annotate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/revise"
)

var notePattern = regexp.MustCompile(`\{>>([\s\S]*?)<<\}`)

// anchorBytes bounds how much preceding text anchors a lifted comment.
const anchorBytes = 60

// LiftComments removes comment wrappers from text and returns them as
// comments anchored on the text that preceded them on the same line.
// It is the inverse of AttachComments for comments with a usable anchor.
func LiftComments(text string) (string, []revise.Comment) {
	matches := notePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder
	var comments []revise.Comment
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])
		c := parseNote(text[m[2]:m[3]])
		c.Anchor = anchorBefore(sb.String())
		comments = append(comments, c)
		last = m[1]
		// Avoid leaving a doubled space where the wrapper stood.
		if strings.HasSuffix(sb.String(), " ") && strings.HasPrefix(text[last:], " ") {
			last++
		}
	}
	sb.WriteString(text[last:])
	return sb.String(), comments
}

// parseNote splits "author: text". Content without a short single-line
// author prefix is all text.
func parseNote(s string) revise.Comment {
	if i := strings.Index(s, ": "); i > 0 && i <= 40 && !strings.ContainsRune(s[:i], '\n') {
		return revise.Comment{Author: strings.TrimSpace(s[:i]), Text: strings.TrimSpace(s[i+2:])}
	}
	return revise.Comment{Text: strings.TrimSpace(s)}
}

// anchorBefore returns up to anchorBytes of s's last line, starting on a
// word boundary and ending on the last non-space character.
func anchorBefore(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if len(s) > anchorBytes {
		tail := s[len(s)-anchorBytes:]
		for len(tail) > 0 && !utf8.RuneStart(tail[0]) {
			tail = tail[1:]
		}
		if i := strings.IndexFunc(tail, unicode.IsSpace); i >= 0 {
			tail = strings.TrimLeftFunc(tail[i:], unicode.IsSpace)
		}
		s = tail
	}
	return s
}
