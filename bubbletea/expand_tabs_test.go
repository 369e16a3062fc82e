package bubbletea_test

import (
	"testing"

	"github.com/fwojciec/revise/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestExpandTabs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		startCol int
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "no tabs", input: "hello world", expected: "hello world"},
		{name: "single tab at start expands to 8 spaces", input: "\t", expected: "        "},
		{name: "tab after one char expands to 7 spaces", input: "a\t", expected: "a       "},
		{name: "tab after eight chars expands to 8 spaces", input: "12345678\t", expected: "12345678        "},
		{name: "start column shifts the first stop", input: "\tx", startCol: 5, expected: "   x"},
		{name: "columns restart after a newline", input: "abc\n\tx", expected: "abc\n        x"},
		{name: "wide runes count two columns", input: "世\t", expected: "世      "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, bubbletea.ExpandTabs(tt.input, tt.startCol))
		})
	}
}
