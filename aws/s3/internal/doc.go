// Package internal contains private implementation details for the S3 module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - operations: list and download against the S3 API
//   - sync: remote prefix to local directory mirroring
//   - validation: input validation and key to path mapping
//   - s3api: the mockable subset of the S3 API
//   - testutil: mocks, fakes and LocalStack helpers for tests
package internal
