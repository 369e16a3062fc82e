package clipboard_test

import (
	"os"
	"testing"

	"github.com/fwojciec/revise/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_Copy(t *testing.T) {
	// Shares the process-wide system clipboard, so not parallel.
	if os.Getenv("REVISE_CLIPBOARD_TEST") == "" {
		t.Skip("set REVISE_CLIPBOARD_TEST to exercise the system clipboard")
	}

	cb := clipboard.NewSystem()
	testContent := "test clipboard content from revise"

	require.NoError(t, cb.Copy(testContent))

	got, err := cb.Read()
	require.NoError(t, err)
	assert.Equal(t, testContent, got)
}

func TestMemory_Copy(t *testing.T) {
	t.Parallel()

	cb := clipboard.NewMemory()
	assert.Empty(t, cb.Content())

	require.NoError(t, cb.Copy("first"))
	require.NoError(t, cb.Copy("second"))

	assert.Equal(t, "second", cb.Content())
}

func TestDefault(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, clipboard.Default())
}
