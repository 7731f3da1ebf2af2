// Package urdf writes single-link robot descriptions for downloaded objects,
// so each fused model can be loaded into a physics simulator.
//
// For every object folder under a root that has a fused/ directory,
// Generate writes fused/<object>.urdf pointing at the fused OBJ mesh.
package urdf

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// FusedDir is the folder holding an object's fused model.
const FusedDir = "fused"

// Params are the physical properties written into every description.
type Params struct {
	Mass             float64
	Inertia          float64
	LateralFriction  float64
	SpinningFriction float64
	RollingFriction  float64
	ContactCFM       float64
	ContactERP       float64

	// MeshPath is the visual and collision mesh, relative to the fused folder.
	MeshPath string
}

// DefaultParams returns the parameters used for small handheld objects.
func DefaultParams() Params {
	return Params{
		Mass:             0.01,
		Inertia:          1e-3,
		LateralFriction:  0.8,
		SpinningFriction: 0.001,
		RollingFriction:  0.001,
		ContactCFM:       0,
		ContactERP:       0.2,
		MeshPath:         "obj/fused_model.obj",
	}
}

// Generator writes robot descriptions into object folders.
type Generator struct {
	fsys      fs.Filesystem
	params    Params
	overwrite bool
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithParams replaces every physical parameter.
func WithParams(p Params) Option {
	return func(g *Generator) {
		g.params = p
	}
}

// WithMass sets the link mass in kilograms.
func WithMass(mass float64) Option {
	return func(g *Generator) {
		g.params.Mass = mass
	}
}

// WithLateralFriction sets the lateral friction coefficient.
func WithLateralFriction(friction float64) Option {
	return func(g *Generator) {
		g.params.LateralFriction = friction
	}
}

// WithMeshPath sets the mesh path relative to the fused folder.
func WithMeshPath(path string) Option {
	return func(g *Generator) {
		g.params.MeshPath = path
	}
}

// WithOverwrite controls whether existing descriptions are rewritten. Default true.
func WithOverwrite(overwrite bool) Option {
	return func(g *Generator) {
		g.overwrite = overwrite
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator over fsys.
func NewGenerator(fsys fs.Filesystem, opts ...Option) *Generator {
	g := &Generator{
		fsys:      fsys,
		params:    DefaultParams(),
		overwrite: true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result lists what Generate did, by path.
type Result struct {
	// Created holds the written description files.
	Created []string
	// Existing holds descriptions left untouched because overwriting is off.
	Existing []string
	// Skipped holds object folders without a fused directory.
	Skipped []string
}

// Generate writes a description for each direct subdirectory of root.
// A missing root is an error; a folder without fused/ is skipped with a warning.
func (g *Generator) Generate(root string) (*Result, error) {
	isDir, err := fs.IsDir(g.fsys, root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to inspect root")
	}
	if !isDir {
		return nil, errors.New(errors.CodeNotFound, "root directory does not exist").WithContext("root", root)
	}

	entries, err := g.fsys.ReadDir(root)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeStorage, "failed to list root", map[string]interface{}{
			"root": root,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	result := &Result{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		objectDir := filepath.Join(root, name)
		fusedDir := filepath.Join(objectDir, FusedDir)

		hasFused, err := fs.IsDir(g.fsys, fusedDir)
		if err != nil {
			return result, errors.Wrap(err, errors.CodeStorage, "failed to inspect "+fusedDir)
		}
		if !hasFused {
			g.logger.Warn("fused directory does not exist, skipping", "object", name, "path", objectDir)
			result.Skipped = append(result.Skipped, objectDir)
			continue
		}

		target := filepath.Join(fusedDir, name+".urdf")
		if !g.overwrite {
			exists, err := g.fsys.Exists(target)
			if err != nil {
				return result, errors.Wrap(err, errors.CodeStorage, "failed to inspect "+target)
			}
			if exists {
				g.logger.Info("description exists, leaving it", "path", target)
				result.Existing = append(result.Existing, target)
				continue
			}
		}

		var buf bytes.Buffer
		if err := Render(&buf, name, g.params); err != nil {
			return result, errors.Wrap(err, errors.CodeInternal, "failed to render description")
		}
		if err := g.fsys.WriteFile(target, buf.Bytes(), 0o644); err != nil {
			return result, errors.WrapWithContext(err, errors.CodeStorage, "failed to write description", map[string]interface{}{
				"path": target,
			})
		}

		g.logger.Info("created", "path", target)
		result.Created = append(result.Created, target)
	}

	return result, nil
}
