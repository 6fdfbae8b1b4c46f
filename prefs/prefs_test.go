package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	assert := assert.New(t)

	m := NewMemory()
	assert.Empty(m.GetString("SavedTexture"))
	assert.NoError(m.SetString("SavedTexture", "/tmp/a.png"))
	assert.Equal("/tmp/a.png", m.GetString("SavedTexture"))
}

func TestFile_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	f, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, f.GetString("SavedTexture"))

	require.NoError(t, f.SetString("SavedTexture", "/home/user/PaintedTexture 2026-10-19 10-30.png"))
	require.NoError(t, f.SetString("Other", "value"))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/PaintedTexture 2026-10-19 10-30.png", reopened.GetString("SavedTexture"))
	assert.Equal(t, "value", reopened.GetString("Other"))
	assert.Equal(t, path, reopened.Path())
}

func TestFile_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
