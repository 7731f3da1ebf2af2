package s3

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/internal/s3api"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs"
	"github.com/pgavriel/MOADv2/fs/billy"
)

// DefaultRegion is used when neither an option nor the environment names a region.
const DefaultRegion = "us-east-1"

// DefaultMaxRetries is the number of retries after a failed first attempt.
const DefaultMaxRetries = 3

// minBurst is the smallest token bucket burst used for rate limiting.
const minBurst = 32 * 1024

// Client is a read-only S3 transfer client.
// It is safe for sequential use by a single run; every value it needs is
// supplied at construction time.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem

	// limiter throttles download reads, nil when unlimited
	limiter *rate.Limiter

	logger *slog.Logger
}

// New creates a new S3 client with the provided options.
// Credentials come from the default chain unless WithAnonymousCredentials
// or WithProfile is given.
//
// Example:
//
//	client, err := s3.New(ctx,
//	    s3.WithRegion("us-east-1"),
//	    s3.WithAnonymousCredentials(),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Anonymous {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
		} else if clientCfg.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(clientCfg.Profile))
		}

		var err error
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	if clientCfg.MaxRetries >= 0 {
		cfg.RetryMaxAttempts = retryMaxAttempts(clientCfg.MaxRetries)
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := newHTTPClient(clientCfg.Timeout)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	client := newClient(s3Client, clientCfg)
	client.config = cfg
	client.logger.Debug("s3 client initialized",
		"region", cfg.Region,
		"endpoint", clientCfg.Endpoint,
		"anonymous", clientCfg.Anonymous,
		"path_style", clientCfg.ForcePathStyle)

	return client, nil
}

// NewWithClient creates a new S3 client with a custom S3API implementation.
// This is primarily used for testing with mocked clients. Only the
// filesystem, logger and rate limit options apply.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	clientCfg := defaultClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}
	return newClient(s3Client, clientCfg)
}

func defaultClientConfig() *s3types.ClientConfig {
	return &s3types.ClientConfig{
		MaxRetries: DefaultMaxRetries,
	}
}

func newClient(api s3api.S3API, clientCfg *s3types.ClientConfig) *Client {
	// Initialize filesystem - use provided one or default to host paths
	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewBaseOSFS()
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		s3Client: api,
		fs:       filesystem,
		limiter:  newLimiter(clientCfg.RateLimit),
		logger:   logger,
	}
}

// retryMaxAttempts converts a retry count into the SDK's attempt count,
// which includes the first try.
func retryMaxAttempts(retries int) int {
	return retries + 1
}

// newHTTPClient bounds dialing, the TLS handshake and the wait for response
// headers by timeout. Reading the body is not bounded, so a rate-limited
// transfer of a large file is never cut off midway.
func newHTTPClient(timeout time.Duration) *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = timeout
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.TLSHandshakeTimeout = timeout
			tr.ResponseHeaderTimeout = timeout
		})
}

// newLimiter returns a token bucket for bytesPerSecond, or nil when unlimited.
func newLimiter(bytesPerSecond int64) *rate.Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	burst := int(max(bytesPerSecond, minBurst))
	return rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
}

// Filesystem returns the filesystem the client writes downloads to.
func (c *Client) Filesystem() fs.Filesystem {
	return c.fs
}

// Region returns the region the client was configured with.
func (c *Client) Region() string {
	return c.config.Region
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
