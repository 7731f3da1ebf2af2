// Package errors defines the errors returned by the S3 transfer client.
//
// Every failure is an *Error naming the operation, bucket and key, wrapping
// one of the sentinels below when the cause is known:
//
//	if errors.Is(err, s3errors.ErrObjectNotFound) {
//	    // skip and continue with the next key
//	}
package errors

import (
	"errors"
	"fmt"
)

// Error is a failed S3 operation.
type Error struct {
	// Op is the client method that failed, e.g. "mirror" or "download".
	Op     string
	Bucket string
	// Key is the object key or prefix.
	Key string
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	case e.Key != "":
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	default:
		return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewValidationError creates an ErrInvalidInput error with the given message.
func NewValidationError(message string) *Error {
	return NewError("validate", ErrInvalidInput).WithMessage(message)
}

// Sentinels matched with errors.Is.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3: invalid object key")

	// ErrUnsafePath indicates that a key would be written outside the local root
	ErrUnsafePath = errors.New("s3: key escapes local root")

	// ErrLocalExists indicates that the destination file already exists
	ErrLocalExists = errors.New("s3: local file already exists")

	// ErrInvalidCredentials indicates that the AWS credentials are invalid
	ErrInvalidCredentials = errors.New("s3: invalid credentials")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsNotFound checks for a missing object or bucket.
func IsNotFound(err error) bool {
	return IsObjectNotFound(err) || errors.Is(err, ErrBucketNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidObjectKey) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrUnsafePath)
}
