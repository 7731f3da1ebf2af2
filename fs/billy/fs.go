// Package billy adapts go-billy filesystems to fs.Filesystem.
//
// NewBaseOSFS resolves paths the way the host does and backs the CLI;
// NewInMemoryFS backs the tests. Every error names the operation and path
// and wraps the go-billy cause, so errors.Is(err, os.ErrNotExist) holds.
package billy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/pgavriel/MOADv2/fs"
)

var _ parentfs.Filesystem = (*FS)(nil)

// FS implements fs.Filesystem over a go-billy filesystem.
type FS struct {
	fs billy.Filesystem
}

// NewFS wraps fsys.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewInMemoryFS creates an empty in-memory filesystem.
func NewInMemoryFS() *FS {
	return NewFS(memfs.New())
}

// NewOSFS creates an OS filesystem rooted at path.
func NewOSFS(path string) *FS {
	return NewFS(osfs.New(path))
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("billy: %s %q: %w", op, path, err)
}

func (b *FS) file(op, name string, f billy.File, err error) (parentfs.File, error) {
	if err != nil {
		return nil, wrap(op, name, err)
	}
	return &File{file: f, fs: b}, nil
}

//nolint:ireturn // fs.Filesystem returns fs.File.
func (b *FS) Create(name string) (parentfs.File, error) {
	f, err := b.fs.Create(name)
	return b.file("create", name, f, err)
}

//nolint:ireturn // fs.Filesystem returns fs.File.
func (b *FS) Open(name string) (parentfs.File, error) {
	f, err := b.fs.Open(name)
	return b.file("open", name, f, err)
}

//nolint:ireturn // fs.Filesystem returns fs.File.
func (b *FS) OpenFile(name string, flag int, perm os.FileMode) (parentfs.File, error) {
	f, err := b.fs.OpenFile(name, flag, perm)
	return b.file("openfile", name, f, err)
}

// Exists reports whether path exists. A missing path is not an error.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, wrap("stat", path, err)
}

func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	return wrap("mkdirall", path, b.fs.MkdirAll(path, perm))
}

func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(dirname)
	return list, wrap("readdir", dirname, err)
}

func (b *FS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	return data, wrap("readfile", path, err)
}

func (b *FS) Remove(name string) error {
	return wrap("remove", name, b.fs.Remove(name))
}

func (b *FS) Rename(oldpath, newpath string) error {
	return wrap("rename", oldpath+" -> "+newpath, b.fs.Rename(oldpath, newpath))
}

func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	return info, wrap("stat", name, err)
}

// Walk walks the tree rooted at root; filepath.SkipDir is honored.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	return wrap("walk", root, util.Walk(b.fs, root, walkFn))
}

func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return wrap("writefile", filename, util.WriteFile(b.fs, filename, data, perm))
}
