package s3

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/s3test"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs/billy"
)

func TestClient_Mirror(t *testing.T) {
	ctx := context.Background()
	bucket := s3test.NewFakeBucket("moad")
	bucket.PageSize = 100
	bucket.PutN("ATB1_001/pose-a/DSLR/", 360, "JPG")
	bucket.Put("ATB1_001/pose-a/DSLR/", nil)
	bucket.Put("ATB1_001/pose-b/DSLR/other.JPG", []byte("other"))

	fsys := billy.NewInMemoryFS()
	client := newTestClient(bucket, WithFilesystem(fsys))
	root := filepath.Join("data", "ATB1_001", "pose-a", "DSLR")

	first, err := client.Mirror(ctx, "moad", "ATB1_001/pose-a/DSLR/", root)
	require.NoError(t, err)
	assert.True(t, first.Found)
	assert.Equal(t, 360, first.FilesDownloaded)
	assert.Equal(t, 0, first.FilesSkipped)
	assert.False(t, first.Failed())

	entries, err := fsys.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 360)

	got, err := fsys.ReadFile(filepath.Join(root, "file_7.JPG"))
	require.NoError(t, err)
	assert.Equal(t, "ATB1_001/pose-a/DSLR/file_7.JPG", string(got))

	calls := len(bucket.GetCalls)
	second, err := client.Mirror(ctx, "moad", "ATB1_001/pose-a/DSLR/", root)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesDownloaded)
	assert.Equal(t, 360, second.FilesSkipped)
	assert.Len(t, bucket.GetCalls, calls)
}

func TestClient_Mirror_KeepsExistingFiles(t *testing.T) {
	ctx := context.Background()
	bucket := s3test.NewFakeBucket("moad")
	bucket.Put("obj/cad/model.stl", []byte("remote"))
	bucket.Put("obj/cad/parts/wheel.stl", []byte("wheel"))

	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("out", 0o755))
	require.NoError(t, fsys.WriteFile("out/model.stl", []byte("local edit"), 0o644))

	client := newTestClient(bucket, WithFilesystem(fsys))
	result, err := client.Mirror(ctx, "moad", "obj/cad/", "out")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesDownloaded)
	assert.Equal(t, 1, result.FilesSkipped)

	got, err := fsys.ReadFile("out/model.stl")
	require.NoError(t, err)
	assert.Equal(t, "local edit", string(got))

	got, err = fsys.ReadFile(filepath.Join("out", "parts", "wheel.stl"))
	require.NoError(t, err)
	assert.Equal(t, "wheel", string(got))
}

func TestClient_Mirror_PrefixNotFound(t *testing.T) {
	client := newTestClient(s3test.NewFakeBucket("moad"))

	result, err := client.Mirror(context.Background(), "moad", "NOPE_999/cad/", "out")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Zero(t, result.FilesDownloaded)
}

func TestClient_Mirror_RejectsEscapingKeys(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.Put("obj/cad/../../../etc/passwd", []byte("nope"))
	bucket.Put("obj/cad/ok.stl", []byte("ok"))

	fsys := billy.NewInMemoryFS()
	client := newTestClient(bucket, WithFilesystem(fsys))

	result, err := client.Mirror(context.Background(), "moad", "obj/cad/", "out")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesDownloaded)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0].Err, s3errors.ErrUnsafePath)

	exists, err := fsys.Exists("etc/passwd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_Mirror_DryRun(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.PutN("obj/usd/", 3, "usd")

	fsys := billy.NewInMemoryFS()
	client := newTestClient(bucket, WithFilesystem(fsys))

	result, err := client.Mirror(context.Background(), "moad", "obj/usd/", "out", WithMirrorDryRun(true))
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Len(t, result.Operations, 3)
	for _, op := range result.Operations {
		assert.Equal(t, s3types.MirrorDownload, op.Action)
	}
	assert.Zero(t, result.FilesDownloaded)
	assert.Empty(t, bucket.GetCalls)
}

func TestClient_Mirror_InvalidInput(t *testing.T) {
	client := newTestClient(s3test.NewFakeBucket("moad"))

	_, err := client.Mirror(context.Background(), "moad", "obj/", "")
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)

	_, err = client.Mirror(context.Background(), "Bad_Bucket", "obj/", "out")
	assert.ErrorIs(t, err, s3errors.ErrInvalidBucketName)
}
