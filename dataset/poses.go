package dataset

import (
	"context"
	"sort"
	"strings"
)

// PosePrefix marks a capture session folder under an object.
const PosePrefix = "pose-"

// DiscoverPoses lists the immediate folders of <object>/ and returns the
// names starting with PosePrefix, sorted and without slashes.
func DiscoverPoses(ctx context.Context, remote Remote, object string) ([]string, error) {
	base := object + "/"
	prefixes, err := remote.ListCommonPrefixes(ctx, base)
	if err != nil {
		return nil, err
	}
	return FilterPoses(base, prefixes), nil
}

// FilterPoses strips base from each common prefix and keeps pose folders.
func FilterPoses(base string, prefixes []string) []string {
	poses := make([]string, 0, len(prefixes))
	seen := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		name := strings.Trim(strings.TrimPrefix(p, base), "/")
		if !strings.HasPrefix(name, PosePrefix) || strings.Contains(name, "/") || seen[name] {
			continue
		}
		seen[name] = true
		poses = append(poses, name)
	}
	sort.Strings(poses)
	return poses
}
