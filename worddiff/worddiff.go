// Package worddiff highlights the words a replacement changes.
package worddiff

import (
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/lcs"
	"github.com/fwojciec/revise/tokenize"
)

// Compile-time interface verification.
var _ revise.WordDiffer = (*Differ)(nil)

// similarityThreshold is the minimum ratio for word-level diffing.
// Below this threshold, both sides are marked as wholly changed.
const similarityThreshold = 0.4

// Differ computes word-level diffs between an original and its replacement.
type Differ struct {
	words *tokenize.Words
}

// NewDiffer creates a new Differ instance.
func NewDiffer() *Differ {
	return &Differ{words: tokenize.NewWords()}
}

// Diff returns segments for both the old and new strings,
// marking which portions changed between them.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []revise.Segment) {
	if old == "" && new == "" {
		return nil, nil
	}
	if old == "" {
		return nil, []revise.Segment{{Text: new, Changed: true}}
	}
	if new == "" {
		return []revise.Segment{{Text: old, Changed: true}}, nil
	}
	if old == new {
		seg := revise.Segment{Text: old}
		return []revise.Segment{seg}, []revise.Segment{seg}
	}

	oldTokens := d.words.Tokenize(old)
	newTokens := d.words.Tokenize(new)
	if !hasSufficientSimilarity(oldTokens, newTokens) {
		return []revise.Segment{{Text: old, Changed: true}},
			[]revise.Segment{{Text: new, Changed: true}}
	}

	for _, run := range lcs.Diff(oldTokens, newTokens) {
		switch run.Op {
		case revise.Unchanged:
			oldSegs = appendSegment(oldSegs, run.Text, false)
			newSegs = appendSegment(newSegs, run.Text, false)
		case revise.Removed:
			oldSegs = appendSegment(oldSegs, run.Text, true)
		case revise.Added:
			newSegs = appendSegment(newSegs, run.Text, true)
		}
	}
	return oldSegs, newSegs
}

// appendSegment merges text into the last segment when their status matches.
func appendSegment(segs []revise.Segment, text string, changed bool) []revise.Segment {
	if n := len(segs); n > 0 && segs[n-1].Changed == changed {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, revise.Segment{Text: text, Changed: changed})
}

// hasSufficientSimilarity checks if tokens have enough overlap to warrant word-level diff.
// Whitespace tokens do not count as overlap.
func hasSufficientSimilarity(oldTokens, newTokens []string) bool {
	counts := make(map[string]int, len(oldTokens))
	oldLen := 0
	for _, t := range oldTokens {
		if isSpace(t) {
			continue
		}
		counts[t]++
		oldLen++
	}

	common, newLen := 0, 0
	for _, t := range newTokens {
		if isSpace(t) {
			continue
		}
		newLen++
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}

	total := oldLen + newLen
	if total == 0 {
		return false
	}
	return float64(2*common)/float64(total) >= similarityThreshold
}

func isSpace(t string) bool {
	for _, r := range t {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
