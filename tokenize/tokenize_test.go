package tokenize_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/revise/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords_Tokenize(t *testing.T) {
	t.Parallel()

	w := tokenize.NewWords()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple words",
			input:    "The quick fox",
			expected: []string{"The", " ", "quick", " ", "fox"},
		},
		{
			name:     "whitespace run stays together",
			input:    "a  b",
			expected: []string{"a", "  ", "b"},
		},
		{
			name:     "punctuation split from word",
			input:    "fox.",
			expected: []string{"fox", "."},
		},
		{
			name:     "apostrophe inside word",
			input:    "don't",
			expected: []string{"don't"},
		},
		{
			name:     "decimal number",
			input:    "3.14",
			expected: []string{"3.14"},
		},
		{
			name:     "ideographs split per character",
			input:    "Hello 世界",
			expected: []string{"Hello", " ", "世", "界"},
		},
		{
			name:     "placeholder-like token is one word",
			input:    "see QX7A0001 now",
			expected: []string{"see", " ", "QX7A0001", " ", "now"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := w.Tokenize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSentences_Tokenize(t *testing.T) {
	t.Parallel()

	s := tokenize.NewSentences()

	t.Run("splits after terminal punctuation", func(t *testing.T) {
		t.Parallel()

		got := s.Tokenize("One sentence. Another one! A third?")

		assert.Equal(t, []string{"One sentence. ", "Another one! ", "A third?"}, got)
	})

	t.Run("line breaks end sentences", func(t *testing.T) {
		t.Parallel()

		got := s.Tokenize("# Heading\nBody text")

		assert.Equal(t, []string{"# Heading\n", "Body text"}, got)
	})

	t.Run("empty string", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, s.Tokenize(""))
	})
}

func TestClauses_Tokenize(t *testing.T) {
	t.Parallel()

	c := tokenize.NewClauses()

	got := c.Tokenize("First, second; third: done. Tail")

	assert.Equal(t, []string{"First, ", "second; ", "third: ", "done. ", "Tail"}, got)
}

func TestGranularities_Lossless(t *testing.T) {
	t.Parallel()

	input := "# Results\n\nThe value $x^2$ rose [@smith2020], see @fig:one.  Then — «it fell»!\n世界！"

	for _, name := range []string{"word", "sentence", "clause"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := tokenize.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, name, g.Name())
			assert.Equal(t, input, strings.Join(g.Tokenize(input), ""))
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	g, err := tokenize.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, tokenize.Default, g.Name())

	_, err = tokenize.Lookup("paragraph")
	assert.Error(t, err)
}
