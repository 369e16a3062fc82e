package lcs_test

import (
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/lcs"
	"github.com/stretchr/testify/assert"
)

func tokens(s ...string) []string { return s }

func TestDiff_SingleWordChange(t *testing.T) {
	t.Parallel()

	runs := lcs.Diff(
		tokens("The", " ", "quick", " ", "fox"),
		tokens("The", " ", "slow", " ", "fox"),
	)

	assert.Equal(t, []revise.Run{
		{Op: revise.Unchanged, Text: "The "},
		{Op: revise.Removed, Text: "quick"},
		{Op: revise.Added, Text: "slow"},
		{Op: revise.Unchanged, Text: " fox"},
	}, runs)
}

func TestDiff_IdenticalSequences(t *testing.T) {
	t.Parallel()

	runs := lcs.Diff(tokens("a", " ", "b"), tokens("a", " ", "b"))

	assert.Equal(t, []revise.Run{{Op: revise.Unchanged, Text: "a b"}}, runs)
}

func TestDiff_EmptyInputs(t *testing.T) {
	t.Parallel()

	t.Run("both empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, lcs.Diff(nil, nil))
	})

	t.Run("old empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []revise.Run{{Op: revise.Added, Text: "new text"}},
			lcs.Diff(nil, tokens("new", " ", "text")))
	})

	t.Run("new empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []revise.Run{{Op: revise.Removed, Text: "old text"}},
			lcs.Diff(tokens("old", " ", "text"), nil))
	})
}

func TestDiff_PureInsertion(t *testing.T) {
	t.Parallel()

	runs := lcs.Diff(
		tokens("Hello", " ", "world"),
		tokens("Hello", " ", "beautiful", " ", "world"),
	)

	assert.Equal(t, []revise.Run{
		{Op: revise.Unchanged, Text: "Hello "},
		{Op: revise.Added, Text: "beautiful "},
		{Op: revise.Unchanged, Text: "world"},
	}, runs)
}

func TestDiff_RemovedBeforeAddedInGap(t *testing.T) {
	t.Parallel()

	runs := lcs.Diff(
		tokens("a", "b", "c", "d"),
		tokens("a", "x", "y", "d"),
	)

	assert.Equal(t, []revise.Run{
		{Op: revise.Unchanged, Text: "a"},
		{Op: revise.Removed, Text: "bc"},
		{Op: revise.Added, Text: "xy"},
		{Op: revise.Unchanged, Text: "d"},
	}, runs)
}

func TestDiff_ReconstructsBothSides(t *testing.T) {
	t.Parallel()

	oldTokens := tokens("one", " ", "two", " ", "three", " ", "four", " ", "five")
	newTokens := tokens("zero", " ", "one", " ", "three", " ", "four", "!", " ", "six")

	var oldText, newText string
	for _, r := range lcs.Diff(oldTokens, newTokens) {
		switch r.Op {
		case revise.Unchanged:
			oldText += r.Text
			newText += r.Text
		case revise.Removed:
			oldText += r.Text
		case revise.Added:
			newText += r.Text
		}
	}

	assert.Equal(t, "one two three four five", oldText)
	assert.Equal(t, "zero one three four! six", newText)
}
