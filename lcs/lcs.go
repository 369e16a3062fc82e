// Package lcs computes token-level longest-common-subsequence diffs.
package lcs

import (
	"strings"

	"github.com/fwojciec/revise"
)

// Diff returns the runs that turn oldTokens into newTokens, in document order.
// Within each gap between matched tokens the Removed run precedes the Added
// run, and adjacent runs never share an Op.
func Diff(oldTokens, newTokens []string) []revise.Run {
	// Common prefix and suffix never enter the DP table.
	prefix := 0
	for prefix < len(oldTokens) && prefix < len(newTokens) && oldTokens[prefix] == newTokens[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldTokens)-prefix && suffix < len(newTokens)-prefix &&
		oldTokens[len(oldTokens)-1-suffix] == newTokens[len(newTokens)-1-suffix] {
		suffix++
	}

	b := &builder{}
	b.add(revise.Unchanged, oldTokens[:prefix])
	middle(b, oldTokens[prefix:len(oldTokens)-suffix], newTokens[prefix:len(newTokens)-suffix])
	b.add(revise.Unchanged, oldTokens[len(oldTokens)-suffix:])
	return b.runs()
}

// middle diffs the part between the common prefix and suffix.
// Uses O(n×m) dynamic programming with a flat array to minimize allocations.
func middle(b *builder, oldTokens, newTokens []string) {
	m, n := len(oldTokens), len(newTokens)
	if m == 0 || n == 0 {
		b.add(revise.Removed, oldTokens)
		b.add(revise.Added, newTokens)
		return
	}

	// table[i*(n+1)+j] is the LCS length of oldTokens[i:] and newTokens[j:].
	// Filling from the end lets the walk below run forwards.
	stride := n + 1
	table := make([]int, (m+1)*stride)
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldTokens[i] == newTokens[j] {
				table[i*stride+j] = table[(i+1)*stride+j+1] + 1
			} else if table[(i+1)*stride+j] >= table[i*stride+j+1] {
				table[i*stride+j] = table[(i+1)*stride+j]
			} else {
				table[i*stride+j] = table[i*stride+j+1]
			}
		}
	}

	var removed, added []string
	flushGap := func() {
		b.add(revise.Removed, removed)
		b.add(revise.Added, added)
		removed, added = removed[:0], added[:0]
	}

	i, j := 0, 0
	for i < m && j < n {
		switch {
		case oldTokens[i] == newTokens[j]:
			flushGap()
			b.add(revise.Unchanged, oldTokens[i:i+1])
			i++
			j++
		case table[(i+1)*stride+j] >= table[i*stride+j+1]:
			removed = append(removed, oldTokens[i])
			i++
		default:
			added = append(added, newTokens[j])
			j++
		}
	}
	removed = append(removed, oldTokens[i:]...)
	added = append(added, newTokens[j:]...)
	flushGap()
}

// builder merges consecutive tokens with the same op into one run.
type builder struct {
	out  []revise.Run
	text strings.Builder
	op   revise.RunOp
	open bool
}

func (b *builder) add(op revise.RunOp, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if b.open && b.op != op {
		b.flush()
	}
	for _, t := range tokens {
		b.text.WriteString(t)
	}
	b.op = op
	b.open = true
}

func (b *builder) flush() {
	if !b.open {
		return
	}
	b.out = append(b.out, revise.Run{Op: b.op, Text: b.text.String()})
	b.text.Reset()
	b.open = false
}

func (b *builder) runs() []revise.Run {
	b.flush()
	return b.out
}
