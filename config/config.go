// Package config loads the two documents that drive a download run: the
// object catalog (objects.json) and the run configuration
// (downloader_config.json).
//
// Both are read before any network access. Every failure is returned as an
// errors.PlatformError with CodeInvalidConfig, or CodeNotFound for an
// unknown catalog group, so callers can abort before a transfer starts.
//
//	fsys := billy.NewBaseOSFS()
//	cfg, err := config.Load(fsys, "./config", "")
//	if err != nil {
//	    return err
//	}
//	for _, obj := range cfg.Objects {
//	    fmt.Println(obj)
//	}
//
// Run configuration keys may be overridden from the environment with the
// MOAD_ prefix, e.g. MOAD_TARGET_DIR=/data/moad.
package config

import (
	"path/filepath"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// Config is a fully resolved run: settings, catalog and the selected objects.
type Config struct {
	Run     *RunConfig
	Catalog *Catalog

	// Group is the resolved catalog group name.
	Group string

	// Objects are the identifiers of Group in catalog order.
	Objects []string
}

// Load reads both documents from dir and resolves group. An empty group
// falls back to the run configuration's object_group.
func Load(fsys fs.Filesystem, dir, group string) (*Config, error) {
	run, err := LoadRunConfig(fsys, filepath.Join(dir, RunConfigFile))
	if err != nil {
		return nil, err
	}

	catalog, err := LoadCatalog(fsys, filepath.Join(dir, CatalogFile))
	if err != nil {
		return nil, err
	}

	if group == "" {
		group = run.ObjectGroup
	}
	if group == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "no object group selected").
			WithContext("available", catalog.Groups())
	}

	objects, err := catalog.Group(group)
	if err != nil {
		return nil, err
	}

	return &Config{
		Run:     run,
		Catalog: catalog,
		Group:   group,
		Objects: objects,
	}, nil
}
