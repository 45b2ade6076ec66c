package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/config"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/persistence"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err)

	_, err = run(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = run(t, "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, err = run(t, "config", "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"persist_mod_data_per_save_slot": true`)
}

func TestConfigValidateMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := run(t, "config", "validate", path)
	assert.Error(t, err)
}

func TestDataGetSetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext_main.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"count":1,"sims":{"7":"Bella"}}`), 0o644))

	out, err := run(t, "data", "get", path, "sims.7")
	require.NoError(t, err)
	assert.Equal(t, "Bella\n", out)

	_, err = run(t, "data", "get", path, "missing")
	assert.Error(t, err)

	_, err = run(t, "data", "set", path, "count", "5")
	require.NoError(t, err)
	_, err = run(t, "data", "set", path, "name", "plain text")
	require.NoError(t, err)

	out, err = run(t, "data", "get", path, "count")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
	out, err = run(t, "data", "get", path, "name")
	require.NoError(t, err)
	assert.Equal(t, "plain text\n", out)

	_, err = run(t, "data", "delete", path, "sims")
	require.NoError(t, err)
	_, err = run(t, "data", "get", path, "sims")
	assert.Error(t, err)
}

func TestDataDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simext.db")
	db, err := persistence.OpenBolt(path)
	require.NoError(t, err)
	owner := identity.MustNew("Ext", "me", identity.WithNamespace("ext"))
	require.NoError(t, db.Save(context.Background(), persistence.NewKey(owner), map[string]any{"count": 2}))
	require.NoError(t, db.Close())

	out, err := run(t, "data", "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ext/ext_main")
	assert.Contains(t, out, `"count": 2`)

	out, err = run(t, "data", "dump", "--namespace", "other", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExtensionsList(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "greeter")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extension.yaml"),
		[]byte("name: Greeter\nauthor: me\nnamespace: greet\nmain: main.lua\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte("-- noop\n"), 0o644))

	out, err := run(t, "extensions", "list", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Greeter\tgreet\t"+dir)
}
