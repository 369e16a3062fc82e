// Package chroma provides manuscript highlighting using the chroma library.
package chroma

import (
	"errors"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps chroma token types to manuscript styles.
type StyleFunc func(chromalib.TokenType) revise.Style

// Tokenizer extracts highlight tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from a revise.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits source into highlighted tokens for the given language.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source.
func (t *Tokenizer) Tokenize(language, source string) []revise.Token {
	if source == "" {
		return []revise.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var tokens []revise.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		tokens = append(tokens, revise.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}

	return tokens
}

// TokenizeLines tokenizes source with full context, then splits tokens by
// line, so that fenced blocks spanning lines keep their style.
// Returns nil if the language is not supported.
func (t *Tokenizer) TokenizeLines(language, source string) [][]revise.Token {
	tokens := t.Tokenize(language, source)
	if tokens == nil {
		return nil
	}
	return splitTokensByLine(tokens)
}

// splitTokensByLine splits a flat list of tokens into per-line token slices.
func splitTokensByLine(tokens []revise.Token) [][]revise.Token {
	if len(tokens) == 0 {
		return [][]revise.Token{}
	}

	var result [][]revise.Token
	var currentLine []revise.Token

	for _, tok := range tokens {
		if !strings.Contains(tok.Text, "\n") {
			currentLine = append(currentLine, tok)
			continue
		}

		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if part != "" {
				currentLine = append(currentLine, revise.Token{Text: part, Style: tok.Style})
			}
			if i < len(parts)-1 {
				result = append(result, currentLine)
				currentLine = nil
			}
		}
	}

	if len(currentLine) > 0 {
		result = append(result, currentLine)
	}

	return result
}
