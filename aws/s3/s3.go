package s3

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/operations/download"
	"github.com/pgavriel/MOADv2/aws/s3/internal/operations/list"
	"github.com/pgavriel/MOADv2/aws/s3/internal/s3api"
	"github.com/pgavriel/MOADv2/aws/s3/internal/validation"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// PartSuffix is appended to a download's destination path until the copy
// completes. A file carrying it is an unfinished transfer.
const PartSuffix = download.PartSuffix

// List lists a single page of objects under prefix.
// With WithDelimiter the result also carries the rolled-up common prefixes.
//
// Errors:
//   - ErrInvalidBucketName: If the bucket name is invalid
//   - ErrInvalidObjectKey: If the prefix is unsafe
//   - ErrBucketNotFound, ErrAccessDenied: As reported by S3
//
// Example:
//
//	result, err := client.List(ctx, "moad", "ATB1_001/", s3.WithDelimiter("/"))
//	if err != nil {
//	    return err
//	}
//	for _, p := range result.CommonPrefixes {
//	    fmt.Println(p)
//	}
func (c *Client) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...s3types.ListOption,
) (*s3types.ListResult, error) {
	if err := validateBucketAndPrefix("list", bucket, prefix); err != nil {
		return nil, err
	}

	config := &s3types.ListOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	page, err := list.New(c.s3Client).List(ctx, &list.Config{
		Bucket:            bucket,
		Prefix:            prefix,
		Delimiter:         config.Delimiter,
		MaxKeys:           config.MaxKeys,
		StartAfter:        config.StartAfter,
		ContinuationToken: config.ContinuationToken,
	})
	if err != nil {
		return nil, s3errors.NewError("list", s3api.ConvertError(err)).WithBucket(bucket).WithKey(prefix)
	}

	return &s3types.ListResult{
		Objects:               page.Objects,
		CommonPrefixes:        page.CommonPrefixes,
		IsTruncated:           page.IsTruncated,
		NextContinuationToken: page.ContinuationToken,
		Duration:              time.Since(startTime),
	}, nil
}

// ListCommonPrefixes returns every common prefix directly under prefix,
// following pagination to the end. An empty delimiter means "/".
func (c *Client) ListCommonPrefixes(ctx context.Context, bucket, prefix, delimiter string) ([]string, error) {
	if err := validateBucketAndPrefix("listCommonPrefixes", bucket, prefix); err != nil {
		return nil, err
	}

	prefixes, err := list.New(c.s3Client).ListCommonPrefixes(ctx, &list.Config{
		Bucket:    bucket,
		Prefix:    prefix,
		Delimiter: delimiter,
	})
	if err != nil {
		return nil, s3errors.NewError("listCommonPrefixes", s3api.ConvertError(err)).
			WithBucket(bucket).
			WithKey(prefix)
	}
	return prefixes, nil
}

// ListObjects calls fn for every object under prefix across all pages.
// Returning an error from fn stops the listing and returns that error.
func (c *Client) ListObjects(
	ctx context.Context,
	bucket, prefix string,
	fn func(s3types.Object) error,
) error {
	if err := validateBucketAndPrefix("listObjects", bucket, prefix); err != nil {
		return err
	}

	pages := list.New(c.s3Client).ListWithPaginator(&list.Config{Bucket: bucket, Prefix: prefix})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return s3errors.NewError("listObjects", s3api.ConvertError(err)).WithBucket(bucket).WithKey(prefix)
		}
		for _, obj := range page.Objects {
			if err := fn(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrefixExists reports whether at least one object lives under prefix.
// It issues a single one-key listing.
func (c *Client) PrefixExists(ctx context.Context, bucket, prefix string) (bool, error) {
	if err := validateBucketAndPrefix("prefixExists", bucket, prefix); err != nil {
		return false, err
	}

	output, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, s3errors.NewError("prefixExists", s3api.ConvertError(err)).WithBucket(bucket).WithKey(prefix)
	}

	return len(output.Contents) > 0 || len(output.CommonPrefixes) > 0, nil
}

// Exists reports whether a single object exists, using HeadObject.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		converted := s3api.ConvertError(err)
		if s3errors.IsObjectNotFound(converted) {
			return false, nil
		}
		return false, s3errors.NewError("exists", converted).WithBucket(bucket).WithKey(key)
	}
	return true, nil
}

// Download streams an object from S3 into writer, honouring the client rate limit.
//
// Errors:
//   - ErrInvalidInput: If writer is nil
//   - ErrObjectNotFound: If the specified object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to download
func (c *Client) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	opts ...s3types.DownloadOption,
) (*s3types.DownloadResult, error) {
	if err := validateBucketAndKey("download", bucket, key); err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, s3errors.NewError("download", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	config := &s3types.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return c.downloader().Download(ctx, bucket, key, writer, &download.Config{
		ProgressTracker: config.ProgressTracker,
	})
}

// DownloadFile downloads an object to localPath, creating parent directories.
// The body is staged in localPath+".part" and renamed into place after a
// complete copy. An existing localPath is never overwritten: the call fails
// with ErrLocalExists, or returns a skipped result with WithSkipExisting.
//
// Example:
//
//	result, err := client.DownloadFile(ctx, "moad", "ATB1_001/fused_model/baked_texture.png",
//	    "/data/ATB1_001/fused/baked_texture.png", s3.WithSkipExisting(true))
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, localPath string,
	opts ...s3types.DownloadOption,
) (*s3types.DownloadResult, error) {
	if err := validateBucketAndKey("downloadFile", bucket, key); err != nil {
		return nil, err
	}
	if localPath == "" {
		return nil, s3errors.NewError("downloadFile", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("local path cannot be empty")
	}

	config := &s3types.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	result, err := c.downloader().DownloadFile(ctx, bucket, key, localPath, &download.Config{
		ProgressTracker: config.ProgressTracker,
		SkipExisting:    config.SkipExisting,
	})
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		c.logger.Debug("skipping existing file", "key", key, "path", localPath)
	} else {
		c.logger.Info("downloaded", "key", key, "path", localPath, "bytes", result.Size)
	}
	return result, nil
}

func (c *Client) downloader() *download.Downloader {
	return download.New(c.s3Client, c.fs, c.limiter)
}

func validateBucketAndPrefix(op, bucket, prefix string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return s3errors.NewError(op, err).WithBucket(bucket)
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return s3errors.NewError(op, err).WithBucket(bucket).WithKey(prefix)
	}
	return nil
}

func validateBucketAndKey(op, bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return s3errors.NewError(op, err).WithBucket(bucket)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3errors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return nil
}
