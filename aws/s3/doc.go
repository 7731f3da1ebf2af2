// Package s3 provides a read-only S3 transfer client built on AWS SDK v2.
//
// It covers what a dataset downloader needs: single-page and paginated
// listing, common-prefix discovery, existence checks, single-object
// downloads and mirroring of a whole prefix into a local directory without
// overwriting existing files.
//
// Key features:
//   - Anonymous access to public buckets or credentialed access through a profile
//   - Functional options for region, endpoint, retries, timeouts and rate limiting
//   - Downloads staged in ".part" files and renamed into place on success
//   - Keys are validated before they are mapped to local paths
//   - A pluggable filesystem so tests can run in memory
//
// Example usage:
//
//	client, err := s3.New(ctx, s3.WithAnonymousCredentials(), s3.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Mirror(ctx, "moad", "ATB1_001/cad/", "/data/ATB1_001/cad")
//	if err != nil {
//	    return err
//	}
package s3
