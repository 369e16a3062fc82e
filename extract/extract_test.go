package extract_test

import (
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/extract"
	"github.com/fwojciec/revise/protect"
	"github.com/fwojciec/revise/tokenize"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var granularities = []revise.Granularity{
	tokenize.NewWords(),
	tokenize.NewSentences(),
	tokenize.NewClauses(),
}

func TestExtract_Identical(t *testing.T) {
	t.Parallel()

	texts := []string{
		"",
		"The quick brown fox",
		"Hello 世界",
		"# Heading\n\nFirst paragraph. Second sentence, with a clause.\n",
	}

	for _, g := range granularities {
		for _, text := range texts {
			assert.Empty(t, extract.Extract(text, text, "Alice", g), "%s: %q", g.Name(), text)
		}
	}
}

func TestExtract_Words(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		reviewer string
		want     []revise.Change
	}{
		{
			name:     "replace",
			base:     "The quick brown fox",
			reviewer: "The slow brown fox",
			want:     []revise.Change{revise.NewReplace("Alice", 4, "quick", "slow")},
		},
		{
			name:     "insert",
			base:     "Hello world",
			reviewer: "Hello beautiful world",
			want:     []revise.Change{revise.NewInsert("Alice", 6, "beautiful ")},
		},
		{
			name:     "delete",
			base:     "one two three",
			reviewer: "one three",
			want:     []revise.Change{revise.NewDelete("Alice", 4, "two ")},
		},
		{
			name:     "multi-byte suffix",
			base:     "Hello 世界",
			reviewer: "Hello 世界！",
			want:     []revise.Change{revise.NewInsert("Alice", 12, "！")},
		},
		{
			name:     "edits on both ends",
			base:     "alpha beta gamma",
			reviewer: "Alpha beta delta",
			want: []revise.Change{
				revise.NewReplace("Alice", 0, "alpha", "Alpha"),
				revise.NewReplace("Alice", 11, "gamma", "delta"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extract.Extract(tt.base, tt.reviewer, "Alice", tokenize.NewWords())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_Sentences(t *testing.T) {
	t.Parallel()

	base := "First one. Second one. Third one."
	reviewer := "First one. Second two. Third one."

	got := extract.Extract(base, reviewer, "Bob", tokenize.NewSentences())
	want := []revise.Change{revise.NewReplace("Bob", 11, "Second one. ", "Second two. ")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_OffsetsRebuildReviewer(t *testing.T) {
	t.Parallel()

	base := "The cat sat on the mat. It was warm.\nThe dog slept."
	reviewer := "A cat sat on a mat. It was very warm.\nThe dog slept soundly. Then it woke."

	for _, g := range granularities {
		changes := extract.Extract(base, reviewer, "Alice", g)
		require.NotEmpty(t, changes, g.Name())

		rebuilt := base
		for i := len(changes) - 1; i >= 0; i-- {
			c := changes[i]
			require.NoError(t, c.Validate())
			assert.Equal(t, c.OldText, base[c.Start:c.End], g.Name())
			rebuilt = rebuilt[:c.Start] + c.NewText + rebuilt[c.End:]
		}
		assert.Equal(t, reviewer, rebuilt, g.Name())
	}
}

func TestExtract_FlattenedMath(t *testing.T) {
	t.Parallel()

	base := "The area is $x^2$ square metres."
	flattened := "The area is x² square metres."
	changed := "The area is x³ square metres."

	g := protect.NewGuard(base, flattened, changed)
	maskedBase, _ := g.Mask(base)
	maskedFlat, _ := g.Mask(flattened)
	maskedChanged, spans := g.Mask(changed)

	e := extract.NewExtractor(spans)
	words := tokenize.NewWords()

	assert.Empty(t, e.Extract(maskedBase, maskedFlat, "Alice", words))

	got := e.Extract(maskedBase, maskedChanged, "Bob", words)
	require.Len(t, got, 1)
	assert.Equal(t, revise.Replace, got[0].Kind)
}

func TestPair(t *testing.T) {
	t.Parallel()

	runs := []revise.Run{
		{Op: revise.Unchanged, Text: "a "},
		{Op: revise.Removed, Text: "b"},
		{Op: revise.Added, Text: "c"},
		{Op: revise.Unchanged, Text: " d"},
		{Op: revise.Added, Text: "e"},
		{Op: revise.Removed, Text: "f"},
	}

	segments := extract.Pair(runs)
	assert.Equal(t, []extract.Segment{
		{Old: "a ", New: "a "},
		{Changed: true, Old: "b", New: "c"},
		{Old: " d", New: " d"},
		{Changed: true, New: "e"},
		{Changed: true, Old: "f"},
	}, segments)

	changes := extract.Changes(segments, "Ann")
	assert.Equal(t, []revise.Change{
		revise.NewReplace("Ann", 2, "b", "c"),
		revise.NewInsert("Ann", 5, "e"),
		revise.NewDelete("Ann", 5, "f"),
	}, changes)
}
