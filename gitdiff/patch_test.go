package gitdiff_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patchBase = "# Results\n\nThe model converges quickly.\nIt fails on long inputs.\n"

func TestPatchExtractor_Apply(t *testing.T) {
	t.Parallel()

	patch := `diff --git a/paper.md b/paper.md
index 1234567..abcdefg 100644
--- a/paper.md
+++ b/paper.md
@@ -1,4 +1,4 @@
 # Results
 
-The model converges quickly.
+The model converges slowly.
 It fails on long inputs.
`

	got, err := gitdiff.NewPatchExtractor(patchBase).Apply(patch)

	require.NoError(t, err)
	assert.Equal(t, "# Results\n\nThe model converges slowly.\nIt fails on long inputs.\n", got)
}

func TestPatchExtractor_Extract_LiftsComments(t *testing.T) {
	t.Parallel()

	patch := `--- a/paper.md
+++ b/paper.md
@@ -3,2 +3,2 @@
 The model converges quickly.
-It fails on long inputs.
+It fails on long inputs.{>>Bob: quantify this<<}
`
	path := filepath.Join(t.TempDir(), "bob.patch")
	require.NoError(t, os.WriteFile(path, []byte(patch), 0o644))

	doc, err := gitdiff.NewPatchExtractor(patchBase).Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, patchBase, doc.Text)
	assert.Equal(t, []revise.Comment{{Author: "Bob", Text: "quantify this", Anchor: "It fails on long inputs."}}, doc.Comments)
}

func TestPatchExtractor_Errors(t *testing.T) {
	t.Parallel()

	p := gitdiff.NewPatchExtractor(patchBase)

	t.Run("empty patch", func(t *testing.T) {
		t.Parallel()

		_, err := p.Apply("")
		assert.ErrorIs(t, err, gitdiff.ErrNoTextPatch)
	})

	t.Run("two files", func(t *testing.T) {
		t.Parallel()

		patch := `--- a/one.md
+++ b/one.md
@@ -1 +1 @@
-# Results
+# Findings
--- a/two.md
+++ b/two.md
@@ -1 +1 @@
-# Results
+# Outcomes
`
		_, err := p.Apply(patch)
		assert.ErrorIs(t, err, gitdiff.ErrMultipleFiles)
	})

	t.Run("context does not match", func(t *testing.T) {
		t.Parallel()

		patch := `--- a/paper.md
+++ b/paper.md
@@ -1 +1 @@
-# Methods
+# Approach
`
		_, err := p.Apply(patch)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := p.Extract(context.Background(), filepath.Join(t.TempDir(), "none.patch"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
