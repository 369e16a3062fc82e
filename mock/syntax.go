package mock

import "github.com/fwojciec/revise"

// Compile-time interface verification.
var (
	_ revise.Tokenizer  = (*Tokenizer)(nil)
	_ revise.WordDiffer = (*WordDiffer)(nil)
)

// Tokenizer is a mock implementation of revise.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(language, source string) []revise.Token
}

func (t *Tokenizer) Tokenize(language, source string) []revise.Token {
	return t.TokenizeFn(language, source)
}

// WordDiffer is a mock implementation of revise.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []revise.Segment)
}

func (d *WordDiffer) Diff(old, new string) (oldSegs, newSegs []revise.Segment) {
	return d.DiffFn(old, new)
}
