// Package s3test provides an in-memory S3 bucket for tests of code built on
// the s3 client.
package s3test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pgavriel/MOADv2/aws/s3/internal/s3api"
)

// FakeBucket is an in-memory S3API holding a single bucket.
// It honours Prefix, Delimiter, MaxKeys and ContinuationToken on listings,
// which is enough to drive pagination and common-prefix discovery in tests.
type FakeBucket struct {
	Name string

	// PageSize caps every listing page regardless of MaxKeys when positive.
	PageSize int

	mu      sync.Mutex
	objects map[string][]byte

	// GetCalls records every key passed to GetObject.
	GetCalls []string
	// ListCalls counts ListObjectsV2 invocations.
	ListCalls int
}

// NewFakeBucket creates an empty fake bucket.
func NewFakeBucket(name string) *FakeBucket {
	return &FakeBucket{Name: name, objects: make(map[string][]byte)}
}

// Put stores an object.
func (b *FakeBucket) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
}

// PutN stores count objects named <prefix>file_<i>.<ext>, each holding its own key.
func (b *FakeBucket) PutN(prefix string, count int, ext string) {
	for i := 0; i < count; i++ {
		key := prefix + "file_" + strconv.Itoa(i) + "." + ext
		b.Put(key, []byte(key))
	}
}

// GetObject returns the stored object or NoSuchKey.
func (b *FakeBucket) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}

	key := aws.ToString(params.Key)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.GetCalls = append(b.GetCalls, key)

	data, ok := b.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String(key)}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(`"` + strconv.Itoa(len(data)) + `"`),
	}, nil
}

// HeadObject returns object metadata or NotFound.
func (b *FakeBucket) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

// ListObjectsV2 lists keys in lexical order. Continuation tokens are the last
// key or common prefix returned on the previous page.
func (b *FakeBucket) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if err := b.checkBucket(params.Bucket); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ListCalls++

	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)
	after := aws.ToString(params.ContinuationToken)
	if after == "" {
		after = aws.ToString(params.StartAfter)
	}

	limit := int(aws.ToInt32(params.MaxKeys))
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if b.PageSize > 0 && b.PageSize < limit {
		limit = b.PageSize
	}

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// Build the ordered entry list: objects and rolled-up prefixes.
	type entry struct {
		name     string
		isPrefix bool
	}
	var entries []entry
	seen := make(map[string]bool)
	for _, k := range keys {
		if delimiter != "" {
			rest := strings.TrimPrefix(k, prefix)
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if !seen[cp] {
					seen[cp] = true
					entries = append(entries, entry{name: cp, isPrefix: true})
				}
				continue
			}
		}
		entries = append(entries, entry{name: k})
	}

	start := 0
	if after != "" {
		start = sort.Search(len(entries), func(i int) bool { return entries[i].name > after })
	}
	end := min(start+limit, len(entries))

	out := &s3.ListObjectsV2Output{
		Name:   aws.String(b.Name),
		Prefix: aws.String(prefix),
	}
	for _, e := range entries[start:end] {
		if e.isPrefix {
			out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(e.name)})
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(e.name),
			Size: aws.Int64(int64(len(b.objects[e.name]))),
		})
	}
	out.KeyCount = aws.Int32(int32(end - start))
	if end < len(entries) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(entries[end-1].name)
	} else {
		out.IsTruncated = aws.Bool(false)
	}

	return out, nil
}

func (b *FakeBucket) checkBucket(name *string) error {
	if aws.ToString(name) != b.Name {
		return &types.NoSuchBucket{Message: name}
	}
	return nil
}

var _ s3api.S3API = (*FakeBucket)(nil)
