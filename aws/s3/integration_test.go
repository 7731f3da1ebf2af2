//go:build integration
// +build integration

package s3_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/aws/s3"
	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/testutil"
	"github.com/pgavriel/MOADv2/fs/billy"
)

// seedDataset uploads a small MOAD-shaped object tree.
func seedDataset(ctx context.Context, t *testing.T) (*s3.Client, string) {
	t.Helper()

	ls := testutil.StartLocalStack(t)
	bucketName := "moad-integration"

	objects := map[string][]byte{
		"ATB1_001/cad/model.stl":                   []byte("solid"),
		"ATB1_001/fused_model/baked_texture.png":   []byte("png"),
		"ATB1_001/fused_model/obj/fused_model.obj": []byte("v 0 0 0"),
	}
	for _, pose := range []string{"pose-a", "pose-b"} {
		for i := 0; i < 12; i++ {
			key := fmt.Sprintf("ATB1_001/%s/DSLR/IMG_%04d.JPG", pose, i)
			objects[key] = []byte(key)
		}
	}
	require.NoError(t, ls.SeedBucket(ctx, bucketName, objects))

	// Build the client the way the CLI does, against the LocalStack endpoint.
	client, err := s3.New(ctx,
		s3.WithRegion(ls.Region),
		s3.WithEndpoint(ls.Endpoint),
		s3.WithForcePathStyle(true),
		s3.WithFilesystem(billy.NewBaseOSFS()),
	)
	require.NoError(t, err)

	return client, bucketName
}

func TestIntegrationListOperations(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	ctx := context.Background()
	client, bucket := seedDataset(ctx, t)

	prefixes, err := client.ListCommonPrefixes(ctx, bucket, "ATB1_001/", "/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"ATB1_001/cad/", "ATB1_001/fused_model/", "ATB1_001/pose-a/", "ATB1_001/pose-b/",
	}, prefixes)

	exists, err := client.PrefixExists(ctx, bucket, "ATB1_001/")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.PrefixExists(ctx, bucket, "NOPE_999/")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err := client.Exists(ctx, bucket, "ATB1_001/fused_model/baked_texture.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntegrationMirror(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	ctx := context.Background()
	client, bucket := seedDataset(ctx, t)
	root := filepath.Join(t.TempDir(), "ATB1_001", "pose-a", "DSLR")

	first, err := client.Mirror(ctx, bucket, "ATB1_001/pose-a/DSLR/", root)
	require.NoError(t, err)
	assert.Equal(t, 12, first.FilesDownloaded)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 12)

	second, err := client.Mirror(ctx, bucket, "ATB1_001/pose-a/DSLR/", root)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesDownloaded)
	assert.Equal(t, 12, second.FilesSkipped)

	_, err = client.DownloadFile(ctx, bucket, "ATB1_001/missing.png", filepath.Join(root, "missing.png"))
	assert.ErrorIs(t, err, errors.ErrObjectNotFound)
}
