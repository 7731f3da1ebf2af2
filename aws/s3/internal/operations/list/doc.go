// Package list handles S3 object listing operations.
// This includes single-page listing, pagination that follows continuation
// tokens, common-prefix discovery and channel-based streaming of objects.
package list
