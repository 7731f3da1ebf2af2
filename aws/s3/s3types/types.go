// Package s3types provides shared type definitions for the S3 module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pgavriel/MOADv2/fs"
)

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during downloads.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// DownloadResult contains the result of a download operation.
type DownloadResult struct {
	// Key is the S3 object key that was downloaded
	Key string

	// LocalPath is where the object was written, empty for stream downloads
	LocalPath string

	// Size is the size of the downloaded object in bytes
	Size int64

	// ETag is the S3 entity tag for the downloaded object
	ETag string

	// Skipped is true when the local file already existed and nothing was fetched
	Skipped bool

	// Duration is how long the download took
	Duration time.Duration
}

// ListResult contains the result of a single-page list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// CommonPrefixes contains the prefixes rolled up by the delimiter
	CommonPrefixes []string

	// IsTruncated indicates if the results were truncated
	IsTruncated bool

	// NextContinuationToken is the token for the next page of results
	NextContinuationToken string

	// Duration is how long the operation took
	Duration time.Duration
}

// MirrorAction describes what the mirror did, or would do, for one object.
type MirrorAction string

const (
	// MirrorDownload means the object is fetched because no local file exists.
	MirrorDownload MirrorAction = "download"

	// MirrorSkip means a local file already exists at the target path.
	MirrorSkip MirrorAction = "skip"

	// MirrorReject means the key cannot be mapped safely under the local root.
	MirrorReject MirrorAction = "reject"
)

// MirrorOperation is one planned step of a mirror run.
type MirrorOperation struct {
	Action    MirrorAction
	Key       string
	LocalPath string
	Size      int64
	Reason    string
}

// MirrorError records a per-file failure that did not stop the mirror.
type MirrorError struct {
	// Key is the S3 key that failed
	Key string

	// LocalPath is the local destination
	LocalPath string

	// Err is the underlying error
	Err error
}

// MirrorResult contains the result of mirroring one remote prefix.
type MirrorResult struct {
	// Prefix is the mirrored remote prefix
	Prefix string

	// LocalRoot is the directory the prefix was mirrored into
	LocalRoot string

	// Found is false when the prefix holds no objects at all
	Found bool

	// FilesDownloaded is the number of files fetched
	FilesDownloaded int

	// FilesSkipped is the number of files left untouched because they exist locally
	FilesSkipped int

	// BytesDownloaded is the total bytes fetched
	BytesDownloaded int64

	// Operations is the plan that was executed, in execution order
	Operations []MirrorOperation

	// Errors contains the per-file failures
	Errors []MirrorError

	// Duration is how long the mirror took
	Duration time.Duration
}

// Failed reports whether any file in the mirror failed.
func (r *MirrorResult) Failed() bool {
	return len(r.Errors) > 0
}

// Configuration types for functional options

// ClientConfig holds configuration for the S3 client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	Profile          string
	Anonymous        bool
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	RateLimit        int64 // bytes per second, 0 disables limiting
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem
	Logger           *slog.Logger
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	ProgressTracker ProgressTracker
	SkipExisting    bool
}

// ListOptionConfig holds configuration for list operations via functional options.
type ListOptionConfig struct {
	Delimiter         string
	MaxKeys           int32
	StartAfter        string
	ContinuationToken string
}

// MirrorOptionConfig holds configuration for mirror operations via functional options.
type MirrorOptionConfig struct {
	DryRun          bool
	ProgressTracker ProgressTracker
}

type (
	// Option is a functional option for configuring the S3 client.
	Option func(*ClientConfig)
	// DownloadOption is a functional option for configuring S3 download operations.
	DownloadOption func(*DownloadOptionConfig)
	// ListOption is a functional option for configuring S3 list operations.
	ListOption func(*ListOptionConfig)
	// MirrorOption is a functional option for configuring S3 mirror operations.
	MirrorOption func(*MirrorOptionConfig)
)
