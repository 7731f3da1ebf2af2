package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// CatalogFile is the catalog file name inside a configuration directory.
const CatalogFile = "objects.json"

// Catalog maps a group name to an ordered list of dataset object identifiers.
type Catalog struct {
	groups map[string][]string
}

// NewCatalog builds a catalog from an in-memory group map.
func NewCatalog(groups map[string][]string) *Catalog {
	c := &Catalog{groups: make(map[string][]string, len(groups))}
	for name, objects := range groups {
		c.groups[name] = append([]string(nil), objects...)
	}
	return c
}

// LoadCatalog reads and decodes the catalog document at path.
func LoadCatalog(fsys fs.Filesystem, path string) (*Catalog, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to read object catalog",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	var groups map[string][]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to decode object catalog",
			map[string]interface{}{
				"path": path,
			},
		)
	}
	if len(groups) == 0 {
		return nil, errors.New(errors.CodeInvalidConfig, fmt.Sprintf("object catalog %s defines no groups", path))
	}

	for name, objects := range groups {
		for i, obj := range objects {
			if strings.TrimSpace(obj) == "" || strings.ContainsAny(obj, "/\\") {
				return nil, errors.New(
					errors.CodeInvalidConfig,
					fmt.Sprintf("group %q entry %d: invalid object identifier %q", name, i, obj),
				).WithContext("path", path)
			}
		}
	}

	return &Catalog{groups: groups}, nil
}

// Group returns the ordered object identifiers of the named group.
// An unknown name yields a NOT_FOUND error that lists the known groups.
func (c *Catalog) Group(name string) ([]string, error) {
	objects, ok := c.groups[name]
	if !ok {
		return nil, errors.New(
			errors.CodeNotFound,
			fmt.Sprintf("object group %q not found (available: %s)", name, strings.Join(c.Groups(), ", ")),
		).WithContext("group", name)
	}
	return append([]string(nil), objects...), nil
}

// Groups returns the group names in sorted order.
func (c *Catalog) Groups() []string {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
