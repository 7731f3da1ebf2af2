package blender

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/internal/logger"
)

// fakeBlender writes a shell script that echoes its arguments and exits with code.
func fakeBlender(t *testing.T, dir, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(dir, "blender-"+code)
	script := "#!/bin/sh\necho \"$@\"\necho failing >&2\nexit " + code + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func conversionScript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "convert.py")
	require.NoError(t, os.WriteFile(path, []byte("import bpy\n"), 0o644))
	return path
}

func TestScriptRunner_Success(t *testing.T) {
	dir := t.TempDir()
	script := conversionScript(t, dir)

	var stdout bytes.Buffer
	r, err := NewScriptRunner(billy.NewBaseOSFS(), script,
		WithProgram(fakeBlender(t, dir, "0")),
		WithOutput(&stdout, nil),
		WithRunnerLogger(logger.Discard()))
	require.NoError(t, err)

	out, err := r.Run(context.Background(), "/data/obj1/fused/obj1_mesh.ply")
	require.NoError(t, err)

	assert.True(t, out.Success())
	assert.Equal(t, 0, out.ExitCode)
	assert.Contains(t, stdout.String(), "--background --python "+script+" -- /data/obj1/fused/obj1_mesh.ply")
}

func TestScriptRunner_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	r, err := NewScriptRunner(billy.NewBaseOSFS(), conversionScript(t, dir),
		WithProgram(fakeBlender(t, dir, "2")),
		WithRunnerLogger(logger.Discard()))
	require.NoError(t, err)

	out, err := r.Run(context.Background(), "model.stl")
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.Equal(t, 2, out.ExitCode)
}

func TestScriptRunner_MissingProgram(t *testing.T) {
	dir := t.TempDir()
	r, err := NewScriptRunner(billy.NewBaseOSFS(), conversionScript(t, dir),
		WithProgram(filepath.Join(dir, "no-such-blender")),
		WithRunnerLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "model.stl")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))
}

func TestNewScriptRunner_ScriptRequired(t *testing.T) {
	fsys := billy.NewInMemoryFS()

	_, err := NewScriptRunner(fsys, "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = NewScriptRunner(fsys, "scripts/convert.py")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestScriptRunner_Args(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("convert.py", []byte("x"), 0o644))

	r, err := NewScriptRunner(fsys, "convert.py", WithRunnerLogger(logger.Discard()))
	require.NoError(t, err)
	assert.Equal(t, []string{"--background", "--python", "convert.py", "--", "in.ply"}, r.Args("in.ply"))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "", lastLine(""))
	assert.Equal(t, "b", lastLine("a\nb\n"))
	assert.Equal(t, "only", lastLine("only"))
}
