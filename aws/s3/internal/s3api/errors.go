package s3api

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3errors "github.com/pgavriel/MOADv2/aws/s3/errors"
)

// ConvertError maps AWS SDK errors onto the module's sentinel errors.
// The original error stays in the chain. Unknown errors are returned unchanged.
func ConvertError(err error) error {
	if err == nil {
		return nil
	}

	if sentinel := sentinelFor(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func sentinelFor(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return s3errors.ErrObjectNotFound
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return s3errors.ErrObjectNotFound
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return s3errors.ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return s3errors.ErrObjectNotFound
		case "NoSuchBucket":
			return s3errors.ErrBucketNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return s3errors.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
			return s3errors.ErrInvalidCredentials
		}
	}

	return nil
}
