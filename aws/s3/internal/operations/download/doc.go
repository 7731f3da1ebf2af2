// Package download handles S3 object download operations.
// This includes stream downloads to an io.Writer and file downloads that
// stage into a ".part" file before being renamed into place.
//
// Reads can be throttled with a token bucket limiter and reported to a
// progress tracker.
package download
