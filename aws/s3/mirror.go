package s3

import (
	"context"
	"time"

	s3errors "github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/sync/executor"
	"github.com/pgavriel/MOADv2/aws/s3/internal/sync/planner"
	"github.com/pgavriel/MOADv2/aws/s3/internal/sync/scanner"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// Mirror copies every object under prefix into localRoot, keeping the
// path of each key relative to prefix. Files that already exist locally are
// left untouched, so running a mirror twice transfers nothing the second time.
//
// The mirror runs in three phases:
//  1. Scan: list every object under prefix, across all pages
//  2. Plan: map each key under localRoot; skip existing files, reject unsafe keys
//  3. Execute: download the remaining files one at a time
//
// A prefix with no objects yields Found=false and no error. Failures of
// individual files are collected in MirrorResult.Errors and do not stop the
// remaining files; only listing failures and cancellation return an error.
//
// Example:
//
//	result, err := client.Mirror(ctx, "moad", "ATB1_001/pose-a/DSLR/", "/data/ATB1_001/pose-a/DSLR")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("downloaded %d, skipped %d\n", result.FilesDownloaded, result.FilesSkipped)
func (c *Client) Mirror(
	ctx context.Context,
	bucket, prefix, localRoot string,
	opts ...s3types.MirrorOption,
) (*s3types.MirrorResult, error) {
	cfg := &s3types.MirrorOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validateBucketAndPrefix("mirror", bucket, prefix); err != nil {
		return nil, err
	}
	if localRoot == "" {
		return nil, s3errors.NewValidationError("localRoot cannot be empty")
	}

	startTime := time.Now()
	result := &s3types.MirrorResult{
		Prefix:    prefix,
		LocalRoot: localRoot,
	}

	objects, err := scanner.NewScanner(c.s3Client).ScanRemote(ctx, bucket, prefix)
	if err != nil {
		return nil, s3errors.NewError("mirror", err).WithBucket(bucket).WithKey(prefix)
	}
	if len(objects) == 0 {
		c.logger.Warn("prefix holds no objects", "bucket", bucket, "prefix", prefix)
		result.Duration = time.Since(startTime)
		return result, nil
	}
	result.Found = true

	operations, err := planner.NewPlanner(c.fs).Plan(prefix, localRoot, objects)
	if err != nil {
		return nil, s3errors.NewError("mirror", err).WithBucket(bucket).WithKey(prefix)
	}
	result.Operations = operations

	stats := planner.GetOperationStats(operations)
	c.logger.Debug("mirror planned",
		"prefix", prefix,
		"download", stats.DownloadCount,
		"skip", stats.SkipCount,
		"reject", stats.RejectCount,
		"bytes", stats.DownloadBytes)

	if cfg.DryRun {
		result.Duration = time.Since(startTime)
		return result, nil
	}

	exec := executor.NewExecutor(c.downloader(), c.logger).WithProgressTracker(cfg.ProgressTracker)
	if err := exec.Execute(ctx, bucket, operations, result); err != nil {
		result.Duration = time.Since(startTime)
		return result, s3errors.NewError("mirror", err).WithBucket(bucket).WithKey(prefix)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}
