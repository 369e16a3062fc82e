// Package tokenize provides the diff granularities: words, sentences and clauses.
package tokenize

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/revise"
	"github.com/rivo/uniseg"
)

// Compile-time interface verification.
var (
	_ revise.Granularity = (*Words)(nil)
	_ revise.Granularity = (*Sentences)(nil)
	_ revise.Granularity = (*Clauses)(nil)
)

// Default is the granularity used when none is configured.
// Word-level diffs of heavily rewritten prose fragment into many small edits.
const Default = "sentence"

// Lookup returns the granularity registered under name.
func Lookup(name string) (revise.Granularity, error) {
	switch name {
	case "word", "words":
		return NewWords(), nil
	case "", "sentence", "sentences":
		return NewSentences(), nil
	case "clause", "clauses":
		return NewClauses(), nil
	}
	return nil, fmt.Errorf("unknown granularity %q (want word, sentence or clause)", name)
}

// Words splits text at Unicode word boundaries (UAX #29).
// Whitespace runs and punctuation become their own tokens.
type Words struct{}

// NewWords creates a word-level granularity.
func NewWords() *Words {
	return &Words{}
}

// Name implements revise.Granularity.
func (w *Words) Name() string { return "word" }

// Tokenize implements revise.Granularity.
func (w *Words) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, len(s)/4+1)
	state := -1
	var word string
	for len(s) > 0 {
		word, s, state = uniseg.FirstWordInString(s, state)
		tokens = append(tokens, word)
	}
	return tokens
}

// Sentences splits text at Unicode sentence boundaries (UAX #29).
// Trailing whitespace belongs to the sentence it follows and every line
// break ends a sentence, so headings and list items stand alone.
type Sentences struct{}

// NewSentences creates a sentence-level granularity.
func NewSentences() *Sentences {
	return &Sentences{}
}

// Name implements revise.Granularity.
func (g *Sentences) Name() string { return "sentence" }

// Tokenize implements revise.Granularity.
func (g *Sentences) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	state := -1
	var sentence string
	for len(s) > 0 {
		sentence, s, state = uniseg.FirstSentenceInString(s, state)
		tokens = append(tokens, sentence)
	}
	return tokens
}

// Clauses splits text after clause punctuation (, ; : . ! ?) and line breaks.
// It sits between words and sentences in coarseness.
type Clauses struct {
	pattern *regexp.Regexp
}

// NewClauses creates a clause-level granularity.
func NewClauses() *Clauses {
	return &Clauses{
		pattern: regexp.MustCompile(
			`[^,;:.!?\n]*[,;:.!?\n]+[ \t]*|` + // clause with its closing punctuation
				`[^,;:.!?\n]+`, // trailing clause without punctuation
		),
	}
}

// Name implements revise.Granularity.
func (g *Clauses) Name() string { return "clause" }

// Tokenize implements revise.Granularity.
func (g *Clauses) Tokenize(s string) []string {
	return g.pattern.FindAllString(s, -1)
}
