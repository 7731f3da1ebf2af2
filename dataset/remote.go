package dataset

import (
	"context"

	"github.com/pgavriel/MOADv2/aws/s3"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// Remote is the storage boundary used by the downloader. Prefixes and keys
// are relative to a single bucket.
type Remote interface {
	// PrefixExists reports whether at least one object lives under prefix.
	PrefixExists(ctx context.Context, prefix string) (bool, error)

	// ListCommonPrefixes returns the immediate child folders of prefix,
	// each ending in "/".
	ListCommonPrefixes(ctx context.Context, prefix string) ([]string, error)

	// Mirror copies every object under prefix into localRoot without
	// overwriting existing files. With dryRun it only plans.
	Mirror(ctx context.Context, prefix, localRoot string, dryRun bool) (*s3types.MirrorResult, error)

	// DownloadFile fetches a single object to localPath unless it already exists.
	DownloadFile(ctx context.Context, key, localPath string) (*s3types.DownloadResult, error)

	// Exists reports whether a single object exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// S3Remote binds an s3.Client to one bucket.
type S3Remote struct {
	client *s3.Client
	bucket string
}

var _ Remote = (*S3Remote)(nil)

// NewS3Remote creates a Remote over client and bucket.
func NewS3Remote(client *s3.Client, bucket string) *S3Remote {
	return &S3Remote{client: client, bucket: bucket}
}

// Bucket returns the bound bucket name.
func (r *S3Remote) Bucket() string {
	return r.bucket
}

// PrefixExists implements Remote.
func (r *S3Remote) PrefixExists(ctx context.Context, prefix string) (bool, error) {
	return r.client.PrefixExists(ctx, r.bucket, prefix)
}

// ListCommonPrefixes implements Remote.
func (r *S3Remote) ListCommonPrefixes(ctx context.Context, prefix string) ([]string, error) {
	return r.client.ListCommonPrefixes(ctx, r.bucket, prefix, "/")
}

// Mirror implements Remote.
func (r *S3Remote) Mirror(
	ctx context.Context,
	prefix, localRoot string,
	dryRun bool,
) (*s3types.MirrorResult, error) {
	return r.client.Mirror(ctx, r.bucket, prefix, localRoot, s3.WithMirrorDryRun(dryRun))
}

// DownloadFile implements Remote.
func (r *S3Remote) DownloadFile(ctx context.Context, key, localPath string) (*s3types.DownloadResult, error) {
	return r.client.DownloadFile(ctx, r.bucket, key, localPath, s3.WithSkipExisting(true))
}

// Exists implements Remote.
func (r *S3Remote) Exists(ctx context.Context, key string) (bool, error) {
	return r.client.Exists(ctx, r.bucket, key)
}
