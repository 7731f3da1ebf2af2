package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/s3test"
)

func TestScanner_ScanRemote_FollowsPages(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")
	bucket.PageSize = 7
	bucket.PutN("obj/pose-a/DSLR/", 20, "JPG")
	bucket.Put("obj/pose-b/DSLR/other.JPG", []byte("x"))

	objects, err := NewScanner(bucket).ScanRemote(context.Background(), "moad", "obj/pose-a/DSLR/")
	require.NoError(t, err)

	assert.Len(t, objects, 20)
	assert.Equal(t, 3, bucket.ListCalls)
	for _, obj := range objects {
		assert.Contains(t, obj.Key, "obj/pose-a/DSLR/")
	}
}

func TestScanner_ScanRemote_Errors(t *testing.T) {
	bucket := s3test.NewFakeBucket("moad")

	_, err := NewScanner(bucket).ScanRemote(context.Background(), "other", "obj/")
	require.ErrorIs(t, err, errors.ErrBucketNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewScanner(bucket).ScanRemote(ctx, "moad", "obj/")
	require.ErrorIs(t, err, context.Canceled)
}
