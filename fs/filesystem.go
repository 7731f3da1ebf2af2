// Package fs defines the filesystem abstraction used by the MOAD tooling.
//
// Every component that touches local disk (the prefix mirror, the completeness
// probe, the URDF generator and the Blender batch finder) goes through
// Filesystem so that tests can run against an in-memory implementation.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the set of filesystem operations the MOAD tooling relies on.
type Filesystem interface {
	Create(name string) (File, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadDir(dirname string) ([]os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	Walk(root string, walkFn filepath.WalkFunc) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
