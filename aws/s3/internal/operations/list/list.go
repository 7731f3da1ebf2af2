package list

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3types "github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// maxPageSize is the largest page S3 will return for ListObjectsV2.
const maxPageSize int32 = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister handles listing of S3 objects and common prefixes.
type Lister struct {
	client S3Interface
}

// New creates a new Lister.
func New(client S3Interface) *Lister {
	return &Lister{
		client: client,
	}
}

// Config holds configuration for list operations.
type Config struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	MaxKeys           int32
	StartAfter        string
	ContinuationToken string
}

// Result represents the result of a list operation.
type Result struct {
	Objects           []s3types.Object
	CommonPrefixes    []string
	IsTruncated       bool
	ContinuationToken string
	KeyCount          int
}

// List fetches a single page.
func (l *Lister) List(ctx context.Context, config *Config) (*Result, error) {
	input := buildInput(config, pageSize(config.MaxKeys))
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	} else if config.StartAfter != "" {
		input.StartAfter = aws.String(config.StartAfter)
	}

	output, err := l.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	return convertOutput(output), nil
}

// ListWithPaginator creates a paginator that walks every page of a listing.
func (l *Lister) ListWithPaginator(config *Config) *Paginator {
	return &Paginator{
		client:    l.client,
		config:    config,
		pageSize:  pageSize(config.MaxKeys),
		firstPage: true,
	}
}

// ListCommonPrefixes returns every common prefix directly under the
// configured prefix, following continuation tokens until exhausted.
func (l *Lister) ListCommonPrefixes(ctx context.Context, config *Config) ([]string, error) {
	cfg := *config
	if cfg.Delimiter == "" {
		cfg.Delimiter = "/"
	}

	var prefixes []string
	paginator := l.ListWithPaginator(&cfg)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, page.CommonPrefixes...)
	}
	return prefixes, nil
}

// Paginator walks a listing one page at a time.
type Paginator struct {
	client            S3Interface
	config            *Config
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Result, error) {
	input := buildInput(p.config, p.pageSize)

	if !p.firstPage && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	} else if p.config.StartAfter != "" {
		input.StartAfter = aws.String(p.config.StartAfter)
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects page: %w", err)
	}

	p.firstPage = false
	p.continuationToken = output.NextContinuationToken
	// A truncated page without a token would loop forever.
	p.hasMorePages = aws.ToBool(output.IsTruncated) && p.continuationToken != nil

	return convertOutput(output), nil
}

func buildInput(config *Config, size int32) *s3.ListObjectsV2Input {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(config.Bucket),
		Prefix:  aws.String(config.Prefix),
		MaxKeys: aws.Int32(size),
	}
	if config.Delimiter != "" {
		input.Delimiter = aws.String(config.Delimiter)
	}
	return input
}

// convertOutput converts S3 output to our Result type.
func convertOutput(output *s3.ListObjectsV2Output) *Result {
	result := &Result{
		Objects:        make([]s3types.Object, 0, len(output.Contents)),
		CommonPrefixes: make([]string, 0, len(output.CommonPrefixes)),
		IsTruncated:    aws.ToBool(output.IsTruncated),
		KeyCount:       int(aws.ToInt32(output.KeyCount)),
	}

	if output.NextContinuationToken != nil {
		result.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}

	for _, prefix := range output.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(prefix.Prefix))
	}

	return result
}

func pageSize(requested int32) int32 {
	if requested > 0 && requested <= maxPageSize {
		return requested
	}
	return maxPageSize
}
