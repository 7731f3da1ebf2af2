// Package operations contains the core S3 operation implementations.
// Each read-only operation (list, download) lives in its own subpackage.
package operations
