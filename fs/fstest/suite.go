// Package fstest provides a conformance test suite for fs.Filesystem
// implementations.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New()
//	    })
//	}
package fstest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pgavriel/MOADv2/fs"
)

// TestSuite runs all conformance tests against a filesystem.
// The newFS function should return a fresh, empty filesystem for each test.
func TestSuite(t *testing.T, newFS func() fs.Filesystem) {
	t.Run("ReadFS", func(t *testing.T) {
		TestReadFS(t, newFS())
	})
	t.Run("WriteFS", func(t *testing.T) {
		TestWriteFS(t, newFS())
	})
	t.Run("Rename", func(t *testing.T) {
		TestRename(t, newFS())
	})
	t.Run("WalkFS", func(t *testing.T) {
		TestWalkFS(t, newFS())
	})
}

// TestReadFS tests Open, Stat, ReadDir, ReadFile and Exists.
func TestReadFS(t *testing.T, filesystem fs.Filesystem) {
	content := []byte("test file content")
	if err := filesystem.MkdirAll("testdir", 0o755); err != nil {
		t.Fatalf("MkdirAll(testdir): setup failed: %v", err)
	}
	if err := filesystem.WriteFile("testdir/testfile.txt", content, 0o644); err != nil {
		t.Fatalf("WriteFile(testdir/testfile.txt): setup failed: %v", err)
	}

	t.Run("Open", func(t *testing.T) {
		f, err := filesystem.Open("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Open: got error %v, want nil", err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll: got error %v", err)
		}
		if string(data) != string(content) {
			t.Errorf("Open contents = %q, want %q", data, content)
		}
	})

	t.Run("StatFile", func(t *testing.T) {
		info, err := filesystem.Stat("testdir/testfile.txt")
		if err != nil {
			t.Fatalf("Stat: got error %v", err)
		}
		if info.IsDir() {
			t.Errorf("Stat: IsDir() = true for a file")
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat: Size() = %d, want %d", info.Size(), len(content))
		}
	})

	t.Run("StatDir", func(t *testing.T) {
		info, err := filesystem.Stat("testdir")
		if err != nil {
			t.Fatalf("Stat: got error %v", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat: IsDir() = false for a directory")
		}
	})

	t.Run("ReadDir", func(t *testing.T) {
		entries, err := filesystem.ReadDir("testdir")
		if err != nil {
			t.Fatalf("ReadDir: got error %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "testfile.txt" {
			t.Errorf("ReadDir = %v, want [testfile.txt]", names(entries))
		}
	})

	t.Run("OpenNotExist", func(t *testing.T) {
		_, err := filesystem.Open("testdir/missing.txt")
		if err == nil {
			t.Fatalf("Open(missing): got nil error")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Open(missing): error %v does not wrap os.ErrNotExist", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		for path, want := range map[string]bool{
			"testdir":              true,
			"testdir/testfile.txt": true,
			"testdir/missing.txt":  false,
		} {
			got, err := filesystem.Exists(path)
			if err != nil {
				t.Fatalf("Exists(%q): got error %v", path, err)
			}
			if got != want {
				t.Errorf("Exists(%q) = %v, want %v", path, got, want)
			}
		}
	})
}

// TestWriteFS tests Create, WriteFile, MkdirAll and Remove.
func TestWriteFS(t *testing.T, filesystem fs.Filesystem) {
	t.Run("CreateAndWrite", func(t *testing.T) {
		f, err := filesystem.Create("created.txt")
		if err != nil {
			t.Fatalf("Create: got error %v", err)
		}
		if _, err := f.Write([]byte("hello")); err != nil {
			_ = f.Close()
			t.Fatalf("Write: got error %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close: got error %v", err)
		}

		data, err := filesystem.ReadFile("created.txt")
		if err != nil {
			t.Fatalf("ReadFile: got error %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("ReadFile = %q, want %q", data, "hello")
		}
	})

	t.Run("MkdirAllNested", func(t *testing.T) {
		if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
			t.Fatalf("MkdirAll: got error %v", err)
		}
		if err := filesystem.MkdirAll("a/b/c", 0o755); err != nil {
			t.Fatalf("MkdirAll on existing dir: got error %v", err)
		}
		info, err := filesystem.Stat("a/b")
		if err != nil || !info.IsDir() {
			t.Fatalf("Stat(a/b): want directory, got %v, %v", info, err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := filesystem.WriteFile("gone.txt", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: got error %v", err)
		}
		if err := filesystem.Remove("gone.txt"); err != nil {
			t.Fatalf("Remove: got error %v", err)
		}
		if ok, _ := filesystem.Exists("gone.txt"); ok {
			t.Errorf("Exists after Remove = true")
		}
	})
}

// TestRename tests that Rename moves content and removes the source.
func TestRename(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.MkdirAll("dst", 0o755); err != nil {
		t.Fatalf("MkdirAll: setup failed: %v", err)
	}
	if err := filesystem.WriteFile("dst/file.bin.part", []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile: setup failed: %v", err)
	}

	if err := filesystem.Rename("dst/file.bin.part", "dst/file.bin"); err != nil {
		t.Fatalf("Rename: got error %v", err)
	}

	if ok, _ := filesystem.Exists("dst/file.bin.part"); ok {
		t.Errorf("source still exists after Rename")
	}
	data, err := filesystem.ReadFile("dst/file.bin")
	if err != nil {
		t.Fatalf("ReadFile(dst/file.bin): got error %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("renamed contents = %q, want %q", data, "payload")
	}
}

// TestWalkFS tests that Walk visits every file and directory under root.
func TestWalkFS(t *testing.T, filesystem fs.Filesystem) {
	for _, p := range []string{"root/x/y/z.txt", "root/a.txt"} {
		if err := filesystem.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: setup failed: %v", err)
		}
		if err := filesystem.WriteFile(p, []byte("z"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
	}

	var files []string
	err := filesystem.Walk("root", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: got error %v", err)
	}

	sort.Strings(files)
	want := []string{"root/a.txt", "root/x/y/z.txt"}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("Walk files = %v, want %v", files, want)
	}
}

func names(infos []os.FileInfo) []string {
	out := make([]string, 0, len(infos))
	for _, i := range infos {
		out = append(out, i.Name())
	}
	return out
}
