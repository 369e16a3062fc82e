package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/revise"
)

// tabWidth is the column distance between tab stops.
const tabWidth = 8

// ExpandTabs converts tab characters to spaces at 8-column tab stops. The
// startCol parameter is the column where s begins, which affects how the
// first tab is expanded. Columns restart after every newline.
func ExpandTabs(s string, startCol int) string {
	out, _ := expandTabs(s, startCol)
	return out
}

// expandTabs also returns the column after s.
func expandTabs(s string, startCol int) (string, int) {
	col := startCol
	if !strings.Contains(s, "\t") {
		if i := strings.LastIndexByte(s, '\n'); i >= 0 {
			return s, lipgloss.Width(s[i+1:])
		}
		return s, col + lipgloss.Width(s)
	}

	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\t':
			nextStop := ((col / tabWidth) + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", nextStop-col))
			col = nextStop
		case '\n':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col += lipgloss.Width(string(r))
		}
	}
	return sb.String(), col
}

// expandTokenTabs expands tabs across a token sequence, carrying the column
// from one token to the next.
func expandTokenTabs(tokens []revise.Token) []revise.Token {
	out := make([]revise.Token, len(tokens))
	col := 0
	for i, tok := range tokens {
		out[i] = tok
		out[i].Text, col = expandTabs(tok.Text, col)
	}
	return out
}
