package executor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/operations/download"
	"github.com/pgavriel/MOADv2/aws/s3/s3test"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs/billy"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecutor_Execute(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.Put("obj/cad/a.obj", []byte("aaaa"))
	bucket.Put("obj/cad/c.stl", []byte("cc"))

	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("b.png", []byte("local"), 0o644))

	ops := []s3types.MirrorOperation{
		{Action: s3types.MirrorDownload, Key: "obj/cad/a.obj", LocalPath: "out/a.obj", Size: 4},
		{Action: s3types.MirrorSkip, Key: "obj/cad/b.png", LocalPath: "b.png"},
		{Action: s3types.MirrorDownload, Key: "obj/cad/missing.obj", LocalPath: "out/missing.obj"},
		{Action: s3types.MirrorReject, Key: "obj/cad/../x", Reason: "escapes root"},
		{Action: s3types.MirrorDownload, Key: "obj/cad/c.stl", LocalPath: "out/c.stl", Size: 2},
	}

	exec := NewExecutor(download.New(bucket, fsys, nil), quietLogger())
	result := &s3types.MirrorResult{}
	require.NoError(t, exec.Execute(context.Background(), "moad", ops, result))

	assert.Equal(t, 2, result.FilesDownloaded)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, int64(6), result.BytesDownloaded)
	require.Len(t, result.Errors, 2)
	assert.ErrorIs(t, result.Errors[0].Err, errors.ErrObjectNotFound)
	assert.ErrorIs(t, result.Errors[1].Err, errors.ErrUnsafePath)
	assert.True(t, result.Failed())

	got, err := fsys.ReadFile("out/c.stl")
	require.NoError(t, err)
	assert.Equal(t, "cc", string(got))
}

func TestExecutor_Execute_FileAppearedAfterPlanning(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.Put("obj/a", []byte("remote"))

	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("a", []byte("local"), 0o644))

	exec := NewExecutor(download.New(bucket, fsys, nil), quietLogger())
	result := &s3types.MirrorResult{}
	ops := []s3types.MirrorOperation{{Action: s3types.MirrorDownload, Key: "obj/a", LocalPath: "a"}}
	require.NoError(t, exec.Execute(context.Background(), "moad", ops, result))

	assert.Equal(t, 0, result.FilesDownloaded)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Empty(t, bucket.GetCalls)
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.Put("obj/a", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewExecutor(download.New(bucket, billy.NewInMemoryFS(), nil), nil)
	result := &s3types.MirrorResult{}
	ops := []s3types.MirrorOperation{{Action: s3types.MirrorDownload, Key: "obj/a", LocalPath: "a"}}

	err := exec.Execute(ctx, "moad", ops, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.FilesDownloaded)
}
