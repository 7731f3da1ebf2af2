package download

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/s3api"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs"
)

// PartSuffix is appended to a destination path while its download is in flight.
const PartSuffix = ".part"

// Config holds per-call download settings.
type Config struct {
	ProgressTracker s3types.ProgressTracker
	SkipExisting    bool
}

// Downloader handles S3 download operations with progress tracking support.
type Downloader struct {
	s3Client s3api.S3API
	fs       fs.Filesystem
	limiter  *rate.Limiter
}

// New creates a new Downloader instance. A nil limiter disables throttling.
func New(s3Client s3api.S3API, filesystem fs.Filesystem, limiter *rate.Limiter) *Downloader {
	return &Downloader{
		s3Client: s3Client,
		fs:       filesystem,
		limiter:  limiter,
	}
}

// Download streams an object from S3 into writer.
func (d *Downloader) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	config *Config,
) (*s3types.DownloadResult, error) {
	startTime := time.Now()

	output, err := d.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.NewError("download", s3api.ConvertError(err)).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	size := aws.ToInt64(output.ContentLength)

	var reader io.Reader = output.Body
	if d.limiter != nil {
		reader = &rateLimitedReader{ctx: ctx, reader: reader, limiter: d.limiter}
	}
	if config.ProgressTracker != nil {
		reader = &progressReader{
			reader:          reader,
			progressTracker: config.ProgressTracker,
			total:           size,
		}
	}

	bytesWritten, err := io.Copy(writer, reader)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	if size == 0 {
		size = bytesWritten
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(bytesWritten, size)
		config.ProgressTracker.Complete()
	}

	return &s3types.DownloadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}

// DownloadFile downloads an object to localPath.
// The body is written to localPath+PartSuffix and renamed into place only
// after the copy succeeds, so an interrupted transfer never leaves a file
// at localPath. With SkipExisting an existing localPath is left untouched.
func (d *Downloader) DownloadFile(
	ctx context.Context,
	bucket, key, localPath string,
	config *Config,
) (*s3types.DownloadResult, error) {
	startTime := time.Now()

	exists, err := d.fs.Exists(localPath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	if exists {
		if config.SkipExisting {
			return &s3types.DownloadResult{
				Key:       key,
				LocalPath: localPath,
				Skipped:   true,
				Duration:  time.Since(startTime),
			}, nil
		}
		return nil, errors.NewError("downloadFile", errors.ErrLocalExists).WithBucket(bucket).WithKey(key)
	}

	if err := d.fs.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	partPath := localPath + PartSuffix
	file, err := d.fs.Create(partPath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	result, err := d.Download(ctx, bucket, key, file, config)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = errors.NewError("downloadFile", closeErr).WithBucket(bucket).WithKey(key)
	}
	if err != nil {
		_ = d.fs.Remove(partPath)
		return nil, err
	}

	if err := d.fs.Rename(partPath, localPath); err != nil {
		_ = d.fs.Remove(partPath)
		return nil, errors.NewError("downloadFile", fmt.Errorf("finalize %s: %w", localPath, err)).
			WithBucket(bucket).
			WithKey(key)
	}

	result.LocalPath = localPath
	result.Duration = time.Since(startTime)
	return result, nil
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader          io.Reader
	progressTracker s3types.ProgressTracker
	total           int64
	bytesRead       int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		pr.progressTracker.Update(pr.bytesRead, pr.total)
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

// rateLimitedReader blocks after each read until the limiter grants the bytes read.
type rateLimitedReader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *rate.Limiter
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		// WaitN rejects requests larger than the burst.
		burst := r.limiter.Burst()
		for remaining := n; remaining > 0; {
			chunk := min(remaining, burst)
			if waitErr := r.limiter.WaitN(r.ctx, chunk); waitErr != nil {
				return n, waitErr
			}
			remaining -= chunk
		}
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
