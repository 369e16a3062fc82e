package worddiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/worddiff"
	"github.com/stretchr/testify/assert"
)

func TestDiffer_Diff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		old     string
		new     string
		wantOld []revise.Segment
		wantNew []revise.Segment
	}{
		{
			name:    "single word change",
			old:     "the original text",
			new:     "the revised text",
			wantOld: []revise.Segment{{Text: "the "}, {Text: "original", Changed: true}, {Text: " text"}},
			wantNew: []revise.Segment{{Text: "the "}, {Text: "revised", Changed: true}, {Text: " text"}},
		},
		{
			name:    "identical",
			old:     "hello world",
			new:     "hello world",
			wantOld: []revise.Segment{{Text: "hello world"}},
			wantNew: []revise.Segment{{Text: "hello world"}},
		},
		{
			name:    "completely different",
			old:     "quick",
			new:     "slow",
			wantOld: []revise.Segment{{Text: "quick", Changed: true}},
			wantNew: []revise.Segment{{Text: "slow", Changed: true}},
		},
		{
			name:    "shared whitespace is not similarity",
			old:     "a b c",
			new:     "x y z",
			wantOld: []revise.Segment{{Text: "a b c", Changed: true}},
			wantNew: []revise.Segment{{Text: "x y z", Changed: true}},
		},
		{
			name:    "words added",
			old:     "The fox jumps.",
			new:     "The brown fox jumps.",
			wantOld: []revise.Segment{{Text: "The fox jumps."}},
			wantNew: []revise.Segment{{Text: "The "}, {Text: "brown ", Changed: true}, {Text: "fox jumps."}},
		},
		{
			name:    "empty old",
			old:     "",
			new:     "inserted",
			wantNew: []revise.Segment{{Text: "inserted", Changed: true}},
		},
		{
			name:    "empty new",
			old:     "deleted",
			new:     "",
			wantOld: []revise.Segment{{Text: "deleted", Changed: true}},
		},
	}

	d := worddiff.NewDiffer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotOld, gotNew := d.Diff(tt.old, tt.new)
			assert.Equal(t, tt.wantOld, gotOld)
			assert.Equal(t, tt.wantNew, gotNew)
		})
	}
}

func TestDiffer_Diff_SegmentsRebuildInput(t *testing.T) {
	t.Parallel()

	old := "Results were significant (p < 0.05) in both cohorts, as Table 2 shows."
	new := "Results were highly significant (p < 0.01) in all cohorts, as Table 2 shows."

	oldSegs, newSegs := worddiff.NewDiffer().Diff(old, new)

	assert.Equal(t, old, join(oldSegs))
	assert.Equal(t, new, join(newSegs))
	for i := 1; i < len(newSegs); i++ {
		assert.NotEqual(t, newSegs[i-1].Changed, newSegs[i].Changed, "adjacent segments are merged")
	}
}

func join(segs []revise.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
