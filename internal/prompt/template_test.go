package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRender(t *testing.T) {
	rendered := Default().Render("retrieved facts")

	assert.Contains(t, rendered, "retrieved facts")
	assert.NotContains(t, rendered, Placeholder)
}

func TestRenderEmptyInformation(t *testing.T) {
	rendered := Default().Render("")
	assert.NotContains(t, rendered, Placeholder)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	tmpl, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), tmpl)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Answer with:\n{information}\nOnly."), 0o644))

	tmpl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Answer with:\ncontext here\nOnly.", tmpl.Render("context here"))
}

func TestLoadMissingPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("no substitution point"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), Placeholder)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
