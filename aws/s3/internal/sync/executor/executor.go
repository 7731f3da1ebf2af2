package executor

import (
	"context"
	"log/slog"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/operations/download"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// Executor performs the downloads of a mirror plan.
type Executor struct {
	downloader *download.Downloader
	logger     *slog.Logger

	// Progress tracking
	progressTracker s3types.ProgressTracker
}

// NewExecutor creates a new executor.
func NewExecutor(downloader *download.Downloader, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		downloader: downloader,
		logger:     logger,
	}
}

// WithProgressTracker sets the progress tracker for the executor.
func (e *Executor) WithProgressTracker(tracker s3types.ProgressTracker) *Executor {
	e.progressTracker = tracker
	return e
}

// Execute runs every operation in order and records the outcome in result.
// It returns early only when ctx is cancelled.
func (e *Executor) Execute(
	ctx context.Context,
	bucket string,
	operations []s3types.MirrorOperation,
	result *s3types.MirrorResult,
) error {
	for _, op := range operations {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch op.Action {
		case s3types.MirrorSkip:
			result.FilesSkipped++
			e.logger.Debug("skipping existing file", "key", op.Key, "path", op.LocalPath)

		case s3types.MirrorReject:
			result.Errors = append(result.Errors, s3types.MirrorError{
				Key: op.Key,
				Err: errors.NewError("mirror", errors.ErrUnsafePath).WithKey(op.Key).WithMessage(op.Reason),
			})
			e.logger.Warn("rejected object key", "key", op.Key, "reason", op.Reason)

		case s3types.MirrorDownload:
			res, err := e.downloader.DownloadFile(ctx, bucket, op.Key, op.LocalPath, &download.Config{
				ProgressTracker: e.progressTracker,
				SkipExisting:    true,
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				result.Errors = append(result.Errors, s3types.MirrorError{
					Key:       op.Key,
					LocalPath: op.LocalPath,
					Err:       err,
				})
				e.logger.Error("download failed", "key", op.Key, "path", op.LocalPath, "error", err)
				continue
			}
			// The file may have appeared between planning and execution.
			if res.Skipped {
				result.FilesSkipped++
				continue
			}
			result.FilesDownloaded++
			result.BytesDownloaded += res.Size
			e.logger.Info("downloaded", "key", op.Key, "path", op.LocalPath, "bytes", res.Size)
		}
	}

	return nil
}
