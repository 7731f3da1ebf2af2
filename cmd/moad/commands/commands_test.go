package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := GetRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestURDF(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "obj1", "fused"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "obj2"), 0o755))

	out, err := execute(t, "urdf", "--folder", root, "--mass", "0.5", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "1 written, 0 kept, 1 without fused model")

	data, err := os.ReadFile(filepath.Join(root, "obj1", "fused", "obj1.urdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<mass value="0.5"/>`)
}

func TestDownload_MissingConfig(t *testing.T) {
	_, err := execute(t, "download", "--config-dir", filepath.Join(t.TempDir(), "missing"), "--yes", "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestDownload_UnknownGroup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects.json"), []byte(`{"atb1": ["atb1_001"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "downloader_config.json"),
		[]byte(`{"bucket": "moad", "target_dir": "`+filepath.ToSlash(dir)+`/data"}`), 0o644))

	_, err := execute(t, "download", "--config-dir", dir, "--group", "nope", "--yes", "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestConvertCAD_MissingScript(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, "convert", "cad", "--root", root, "--script", filepath.Join(root, "nope.py"), "--yes", "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestConvertCAD_NoFiles(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "convert.py")
	require.NoError(t, os.WriteFile(script, []byte("import bpy\n"), 0o644))

	out, err := execute(t, "convert", "cad", "--root", root, "--script", script, "--yes", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching files found.")
}
