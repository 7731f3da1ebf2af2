package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgavriel/MOADv2/aws/s3/internal/operations/list"
	"github.com/pgavriel/MOADv2/aws/s3/internal/s3api"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
)

// Scanner enumerates S3 objects under a prefix.
type Scanner struct {
	lister *list.Lister
}

// NewScanner creates a new scanner over the provided S3 client.
func NewScanner(s3Client s3api.S3API) *Scanner {
	return &Scanner{
		lister: list.New(s3Client),
	}
}

// ScanRemote returns every object under prefix, following continuation
// tokens until the listing is exhausted.
func (s *Scanner) ScanRemote(ctx context.Context, bucket, prefix string) ([]s3types.Object, error) {
	var objects []s3types.Object

	paginator := s.lister.ListWithPaginator(&list.Config{
		Bucket: bucket,
		Prefix: prefix,
	})

	for paginator.HasMorePages() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during S3 listing: %w", ctx.Err())
		default:
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucket, s3api.ConvertError(err))
		}

		for _, obj := range page.Objects {
			// Skip objects that don't have the prefix (shouldn't happen but safety check)
			if !strings.HasPrefix(obj.Key, prefix) {
				continue
			}
			obj.ETag = strings.Trim(obj.ETag, `"`)
			objects = append(objects, obj)
		}
	}

	return objects, nil
}
