package dataset

import (
	"fmt"
	"strings"

	"github.com/pgavriel/MOADv2/aws/s3"
	"github.com/pgavriel/MOADv2/fs"
)

// IsComplete reports whether dir exists, is a directory and holds exactly
// expected direct regular files. Subdirectories are not counted and not
// descended into. A missing directory is incomplete, not an error.
func IsComplete(fsys fs.Filesystem, dir string, expected int) (bool, error) {
	isDir, err := fs.IsDir(fsys, dir)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", dir, err)
	}
	if !isDir {
		return false, nil
	}

	n, err := CountFiles(fsys, dir)
	if err != nil {
		return false, err
	}
	return n == expected, nil
}

// CountFiles returns the number of direct regular files in dir.
// Unfinished downloads (names ending in s3.PartSuffix) are not counted.
func CountFiles(fsys fs.Filesystem, dir string) (int, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", dir, err)
	}

	n := 0
	for _, entry := range entries {
		if entry.Mode().IsRegular() && !strings.HasSuffix(entry.Name(), s3.PartSuffix) {
			n++
		}
	}
	return n, nil
}
