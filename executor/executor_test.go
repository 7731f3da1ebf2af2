package executor_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/executor"
)

func TestBasicExecution(t *testing.T) {
	cmd := executor.New("echo", "hello", "world")
	result, err := cmd.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Stdout, "hello world")
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Success())
	assert.Equal(t, "echo hello world", cmd.String())
}

func TestExitCode(t *testing.T) {
	result, err := executor.New("sh", "-c", "echo boom >&2; exit 3").Execute(context.Background())
	require.Error(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "boom")
	assert.False(t, result.Success())
}

func TestMissingProgram(t *testing.T) {
	result, err := executor.New("definitely-not-a-real-program-moad").Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)

	_, err = executor.LookPath("definitely-not-a-real-program-moad")
	assert.ErrorIs(t, err, executor.ErrProgramNotFound)

	path, err := executor.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestWrappedExecutor(t *testing.T) {
	sh := executor.NewWrappedExecutor("sh", executor.WithEnvVar("MOAD_WRAPPED", "yes"))
	assert.Equal(t, "sh", sh.Program())

	result, err := sh.Execute(context.Background(), []string{"-c", "echo $MOAD_WRAPPED"})
	require.NoError(t, err)
	assert.Equal(t, "yes", strings.TrimSpace(result.Stdout))

	_, err = sh.Execute(context.Background(), []string{"-c", "exit 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute sh")
}

func TestCombinedOutput(t *testing.T) {
	cmd := executor.New("sh", "-c", "echo stdout && echo stderr >&2")
	result, err := cmd.Execute(
		context.Background(),
		executor.WithCapture(false, false, true),
	)
	require.NoError(t, err)

	assert.Contains(t, result.Combined, "stdout")
	assert.Contains(t, result.Combined, "stderr")
	assert.Empty(t, result.Stdout)
}

func TestCustomWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := executor.New("sh", "-c", "echo to-out && echo to-err >&2")
	result, err := cmd.Execute(
		context.Background(),
		executor.WithStdoutWriter(&out),
		executor.WithStderrWriter(&errOut),
	)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "to-out")
	assert.Contains(t, errOut.String(), "to-err")
	assert.Contains(t, result.Stdout, "to-out")
}

func TestWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	result, err := executor.New("pwd").Execute(
		context.Background(),
		executor.WithWorkingDir(dir),
	)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvironmentVariables(t *testing.T) {
	base := executor.New("sh", "-c", "echo ${CUSTOM_VAR:-unset}")

	result, err := base.Execute(context.Background(), executor.WithEnvVar("CUSTOM_VAR", "test_value"))
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "test_value")

	// Per-call env must not stick to the executor.
	result, err = base.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "unset")
}

func TestTimeout(t *testing.T) {
	start := time.Now()
	_, err := executor.New("sleep", "5").Execute(
		context.Background(),
		executor.WithTimeout(50*time.Millisecond),
	)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	result, err := executor.New("sleep", "1").Execute(ctx)
	require.Error(t, err)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestNoCapture(t *testing.T) {
	var out bytes.Buffer
	result, err := executor.New("sh", "-c", "echo streamed").Execute(
		context.Background(),
		executor.WithCapture(false, false, false),
		executor.WithStdoutWriter(&out),
	)
	require.NoError(t, err)

	assert.Empty(t, result.Stdout)
	assert.Equal(t, "streamed\n", out.String())
}

func ExampleNew() {
	cmd := executor.New("echo", "Hello, World!")
	result, err := cmd.Execute(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Print(result.Stdout)
	// Output: Hello, World!
}
