// Package blender drives Blender in background mode over batches of dataset
// files: CAD exports that need converting to USD and fused scan meshes that
// need cleaning, texturing and exporting.
//
// The Blender-side Python scripts live outside this module; a Runner only
// needs their path.
package blender

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// Names used by the fused model layout.
const (
	FusedDir        = "fused"
	MeshSuffix      = "_mesh.ply"
	BlendFile       = "blend/fused_model.blend"
	BakedTexture    = "baked_texture.png"
	USDDir          = "usd"
	OBJDir          = "obj"
	UnlimitedDepth  = -1
	DefaultMaxDepth = 5
)

// FindFiles returns the files under root whose base name matches pattern,
// sorted. Files directly in root are at depth 0; a negative maxDepth walks
// the whole tree.
func FindFiles(fsys fs.Filesystem, root, pattern string, maxDepth int, ignoreCase bool) ([]string, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid file pattern",
			map[string]interface{}{"pattern": pattern})
	}
	if err := requireDir(fsys, root); err != nil {
		return nil, err
	}

	var matches []string
	err = fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if rel != "." && maxDepth >= 0 && depth(rel) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() && re.MatchString(info.Name()) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "search failed")
	}

	sort.Strings(matches)
	return matches, nil
}

// Chooser picks one mesh when a fused folder holds several. Returning an
// empty string skips the folder.
type Chooser func(dir string, meshes []string) (string, error)

// SkipAmbiguous is a Chooser that skips every folder with several meshes.
func SkipAmbiguous(string, []string) (string, error) {
	return "", nil
}

// FindFusedMeshes returns one *_mesh.ply per fused/ folder under root,
// sorted. When objectPattern is set, only objects whose folder name matches
// it from the start are searched. Folders with several meshes go to choose.
func FindFusedMeshes(fsys fs.Filesystem, root, objectPattern string, choose Chooser) ([]string, error) {
	var objectRe *regexp.Regexp
	if objectPattern != "" {
		re, err := regexp.Compile("^(?:" + objectPattern + ")")
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid object pattern",
				map[string]interface{}{"pattern": objectPattern})
		}
		objectRe = re
	}
	if choose == nil {
		choose = SkipAmbiguous
	}
	if err := requireDir(fsys, root); err != nil {
		return nil, err
	}

	var dirs []string
	err := fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || info.Name() != FusedDir {
			return nil
		}
		object := filepath.Base(filepath.Dir(path))
		if objectRe == nil || objectRe.MatchString(object) {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "search failed")
	}

	var meshes []string
	for _, dir := range dirs {
		found, err := fusedMeshes(fsys, dir)
		if err != nil {
			return nil, err
		}
		switch len(found) {
		case 0:
		case 1:
			meshes = append(meshes, found[0])
		default:
			chosen, err := choose(dir, found)
			if err != nil {
				return nil, err
			}
			if chosen != "" {
				meshes = append(meshes, chosen)
			}
		}
	}

	sort.Strings(meshes)
	return meshes, nil
}

func fusedMeshes(fsys fs.Filesystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeStorage, "list fused folder",
			map[string]interface{}{"path": dir})
	}
	var found []string
	for _, e := range entries {
		if e.Mode().IsRegular() && strings.HasSuffix(e.Name(), MeshSuffix) {
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(found)
	return found, nil
}

// AlreadyProcessed guesses whether the mesh conversion already ran for the
// fused folder holding meshPath: any of its outputs is enough.
func AlreadyProcessed(fsys fs.Filesystem, meshPath string) (bool, error) {
	dir := filepath.Dir(meshPath)
	for _, name := range []string{BlendFile, BakedTexture} {
		ok, err := fsys.Exists(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil || ok {
			return ok, err
		}
	}
	for _, name := range []string{USDDir, OBJDir} {
		ok, err := fs.IsDir(fsys, filepath.Join(dir, name))
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func requireDir(fsys fs.Filesystem, root string) error {
	ok, err := fs.IsDir(fsys, root)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeStorage, "stat search root",
			map[string]interface{}{"path": root})
	}
	if !ok {
		return errors.New(errors.CodeNotFound, "search root is not a directory").WithContext("path", root)
	}
	return nil
}

func depth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
