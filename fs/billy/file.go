package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// File wraps a go-billy File and satisfies the parent fs.File interface.
type File struct {
	file billy.File
	fs   *FS
}

// Close implements File.Close.
func (f *File) Close() error {
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", f.file.Name(), err)
	}
	return nil
}

// Name implements File.Name.
func (f *File) Name() string {
	return f.file.Name()
}

// Read implements File.Read.
func (f *File) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	return n, f.readErr("read", err)
}

// ReadAt implements File.ReadAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.file.ReadAt(p, off)
	return n, f.readErr(fmt.Sprintf("readat off=%d", off), err)
}

// Seek implements File.Seek.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return pos, fmt.Errorf("billy: seek %q off=%d whence=%d: %w", f.file.Name(), offset, whence, err)
	}
	return pos, nil
}

// Stat implements File.Stat.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.file.Name())
}

// Write implements File.Write.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("billy: write %q: %w", f.file.Name(), err)
	}
	return n, nil
}

// readErr passes io.EOF through untouched so io.Copy and friends see it.
func (f *File) readErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return fmt.Errorf("billy: %s %q: %w", op, f.file.Name(), err)
}
