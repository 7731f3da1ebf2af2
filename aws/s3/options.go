package s3

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the region from the credential chain or DefaultRegion.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAnonymousCredentials sends unsigned requests, for public buckets.
func WithAnonymousCredentials() s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Anonymous = true
	}
}

// WithProfile selects a named profile from the shared AWS config files.
// It is ignored when anonymous credentials are requested.
func WithProfile(profile string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Profile = profile
	}
}

// WithMaxRetries sets how often the SDK retryer retries a failed request.
// Default is DefaultMaxRetries. Zero disables retries; a negative value
// keeps the SDK default.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout bounds connecting to S3 and waiting for response headers.
// Body transfers are not bounded. Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithRateLimit caps download throughput in bytes per second. Zero disables limiting.
func WithRateLimit(bytesPerSecond int64) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if bytesPerSecond >= 0 {
			c.RateLimit = bytesPerSecond
		}
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for file operations.
// If not specified, paths are resolved against the host filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithDownloadProgress sets a progress tracker for download operations.
func WithDownloadProgress(tracker s3types.ProgressTracker) s3types.DownloadOption {
	return func(c *s3types.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithSkipExisting makes DownloadFile return a skipped result instead of
// ErrLocalExists when the destination already exists.
func WithSkipExisting(skip bool) s3types.DownloadOption {
	return func(c *s3types.DownloadOptionConfig) {
		c.SkipExisting = skip
	}
}

// WithDelimiter groups keys sharing a prefix up to delimiter into common prefixes.
func WithDelimiter(delimiter string) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		c.Delimiter = delimiter
	}
}

// WithMaxKeys limits the page size of a list operation (1-1000).
func WithMaxKeys(maxKeys int32) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		c.MaxKeys = maxKeys
	}
}

// WithStartAfter starts listing after the given key.
func WithStartAfter(key string) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		c.StartAfter = key
	}
}

// WithContinuationToken continues a listing from a previous page.
func WithContinuationToken(token string) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		c.ContinuationToken = token
	}
}

// WithMirrorDryRun plans a mirror without transferring anything.
func WithMirrorDryRun(dryRun bool) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithMirrorProgress sets a progress tracker used for every file of a mirror.
func WithMirrorProgress(tracker s3types.ProgressTracker) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		c.ProgressTracker = tracker
	}
}
