package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetAbs returns an absolute, cleaned version of path.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return abs, nil
}

// Exists reports whether path exists on the host filesystem.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
}

// IsDir reports whether path exists in fsys and is a directory.
// A missing path is not an error.
func IsDir(fsys Filesystem, path string) (bool, error) {
	ok, err := fsys.Exists(path)
	if err != nil || !ok {
		return false, err
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
