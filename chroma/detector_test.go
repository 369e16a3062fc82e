package chroma_test

import (
	"testing"

	"github.com/fwojciec/revise/chroma"
	"github.com/stretchr/testify/assert"
)

func TestDetector_DetectFromPath(t *testing.T) {
	t.Parallel()

	t.Run("detects markdown manuscripts", func(t *testing.T) {
		t.Parallel()

		detector := chroma.NewDetector()

		md := detector.DetectFromPath("drafts/paper.md")
		assert.NotEmpty(t, md)
		assert.Equal(t, md, detector.DetectFromPath("paper.markdown"))
	})

	t.Run("names record files after their manuscript", func(t *testing.T) {
		t.Parallel()

		detector := chroma.NewDetector()

		assert.Equal(t, detector.DetectFromPath("paper.md"), detector.DetectFromPath("paper.md.conflicts.json"))
		assert.Equal(t, detector.DetectFromPath("paper.md"), detector.DetectFromPath("drafts/Paper.md.HISTORY.jsonl"))
	})

	t.Run("treats notebook manuscripts as markdown", func(t *testing.T) {
		t.Parallel()

		detector := chroma.NewDetector()
		md := detector.DetectFromPath("paper.md")

		for _, path := range []string{"analysis.qmd", "analysis.Rmd", "post.mdx", "analysis.qmd.conflicts.json"} {
			assert.Equal(t, md, detector.DetectFromPath(path), path)
		}
	})

	t.Run("detects LaTeX sources", func(t *testing.T) {
		t.Parallel()

		assert.NotEmpty(t, chroma.NewDetector().DetectFromPath("chapter.tex"))
	})

	t.Run("returns empty string for unknown extensions", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, chroma.NewDetector().DetectFromPath("file.unknownext"))
	})
}
