package bubbletea_test

import (
	"testing"

	bkey "github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/revise/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_PickMatchesDigits(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()
	for _, r := range "0123456789" {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		assert.True(t, bkey.Matches(msg, km.Pick), "digit %c should pick", r)
	}
	assert.False(t, bkey.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, km.Pick))
}

func TestDefaultKeyMap_HelpCoversBindings(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()

	var full []bkey.Binding
	for _, group := range km.FullHelp() {
		full = append(full, group...)
	}
	for _, b := range km.ShortHelp() {
		assert.Contains(t, full, b, "short help binding %q missing from full help", b.Help().Key)
	}
	assert.Len(t, full, 14)
}

func TestDefaultKeyMap_NoOverlap(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()
	seen := make(map[string]string)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				assert.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}
