package validation

import (
	"net"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
)

var bucketChars = regexp.MustCompile(`^[a-z0-9.-]+$`)

// bucketRules are checked in order; the first violated rule is reported.
var bucketRules = []struct {
	violated func(string) bool
	message  string
}{
	{
		func(b string) bool { return len(b) < 3 || len(b) > 63 },
		"bucket name must be between 3 and 63 characters long",
	},
	{
		func(b string) bool { return !bucketChars.MatchString(b) },
		"bucket name can only contain lowercase letters, numbers, dots, and hyphens",
	},
	{
		func(b string) bool {
			return strings.ContainsAny(b[:1], "-.") || strings.ContainsAny(b[len(b)-1:], "-.")
		},
		"bucket name cannot start or end with a hyphen or dot",
	},
	{
		func(b string) bool { return net.ParseIP(b) != nil },
		"bucket name cannot be formatted as an IP address",
	},
	{
		func(b string) bool { return strings.Contains(b, "..") },
		"bucket name cannot contain two adjacent periods",
	},
}

// ValidateBucketName checks the S3 naming rules for bucket and returns
// ErrInvalidBucketName on the first violation.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be empty")
	}
	for _, rule := range bucketRules {
		if rule.violated(bucket) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage(rule.message)
		}
	}
	return nil
}

// ValidateObjectKey validates that an object key is safe to request and to
// map onto the local filesystem.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}
	return validateKeyLike("validateObjectKey", key)
}

// ValidatePrefix validates a listing prefix. An empty prefix is allowed.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	return validateKeyLike("validatePrefix", prefix)
}

// LocalPath maps key, which must live under prefix, to a path under localRoot.
// It returns ErrUnsafePath when the result would escape localRoot and
// ErrInvalidObjectKey for directory placeholder keys.
func LocalPath(localRoot, prefix, key string) (string, error) {
	if !strings.HasPrefix(key, prefix) {
		return "", errors.NewError("localPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key is not under prefix " + prefix)
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", errors.NewError("localPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key is a directory placeholder")
	}

	if hasPathTraversal(rel) || hasControlCharacters(rel) {
		return "", errors.NewError("localPath", errors.ErrUnsafePath).WithKey(key)
	}

	root := filepath.Clean(localRoot)
	target := filepath.Join(root, filepath.FromSlash(rel))
	if back, err := filepath.Rel(root, target); err != nil || back == "." || strings.HasPrefix(back, "..") {
		return "", errors.NewError("localPath", errors.ErrUnsafePath).WithKey(key)
	}

	return target, nil
}

func validateKeyLike(op, key string) error {
	if hasPathTraversal(key) {
		return errors.NewError(op, errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// S3 supports keys up to 1024 bytes
	if len(key) > 1024 {
		return errors.NewError(op, errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError(op, errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// hasPathTraversal reports whether any path segment is "..", or the key is absolute.
func hasPathTraversal(key string) bool {
	normalized := strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(normalized, "/") {
		return true
	}

	// Windows drive letters
	if len(normalized) >= 3 && normalized[1] == ':' && normalized[2] == '/' {
		return true
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
