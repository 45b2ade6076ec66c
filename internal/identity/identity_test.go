package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id, err := New("Better Buffs", "jdoe", WithVersion("1.2.0"))
	require.NoError(t, err)
	assert.Equal(t, "better_buffs", id.Namespace())
	assert.Equal(t, "Better Buffs (jdoe) 1.2.0", id.String())

	_, err = New("  ", "jdoe")
	require.ErrorIs(t, err, ErrMissingName)

	_, err = New("x", "jdoe", WithNamespace("a/b"))
	require.ErrorIs(t, err, ErrInvalidNamespace)
}

func TestEqualByName(t *testing.T) {
	a := MustNew("ext", "one", WithVersion("1"))
	b := MustNew("ext", "two", WithVersion("2"))
	c := MustNew("other", "one")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestLoadManifest(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "extension.json")
		body := `{"name":"ext","author":"me","namespace":"ext_ns","version":"0.1.0"}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		m, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "ext_ns", m.Namespace())
		assert.Equal(t, path, m.FilePath)
		assert.Equal(t, filepath.Join(dir, "main.lua"), m.MainPath())
	})

	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "extension.yaml")
		body := "name: ext\nauthor: me\nmain: init.lua\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		m, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "ext", m.Name)
		assert.Equal(t, "init.lua", m.Main)

		found, ok := FindManifest(dir)
		require.True(t, ok)
		assert.Equal(t, path, found)
	})

	t.Run("unsupported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "extension.ini")
		require.NoError(t, os.WriteFile(path, []byte("name=x"), 0o644))
		_, err := LoadManifest(path)
		require.ErrorIs(t, err, ErrUnsupportedManifest)
	})

	t.Run("missing name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "extension.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"author":"me"}`), 0o644))
		_, err := LoadManifest(path)
		require.ErrorIs(t, err, ErrMissingName)
	})
}
