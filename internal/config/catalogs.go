// pattern: Imperative Shell

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"meowdash/internal/catalog"
)

// CatalogDirName is the drop-in directory under the config directory. Every
// *.yaml file in it holds a list of extra tools.
const CatalogDirName = "catalog.d"

// CatalogDir returns the drop-in directory for this config.
func (c *Config) CatalogDir() string {
	return filepath.Join(c.Dir, CatalogDirName)
}

// LoadCatalogDir reads every *.yaml and *.yml file in dir, in name order.
// A missing directory yields no entries. Files that fail to parse are
// skipped and reported in the returned error.
func LoadCatalogDir(dir string) ([]catalog.Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, f := range files {
		if f.IsDir() || !isYAML(f.Name()) {
			continue
		}
		names = append(names, f.Name())
	}
	slices.Sort(names)

	var (
		entries []catalog.Entry
		bad     []string
	)
	for _, name := range names {
		loaded, err := loadCatalogFile(filepath.Join(dir, name))
		if err != nil {
			bad = append(bad, name)
			continue
		}
		entries = append(entries, loaded...)
	}
	if len(bad) > 0 {
		return entries, fmt.Errorf("skipped unreadable catalog files: %s", strings.Join(bad, ", "))
	}
	return entries, nil
}

func loadCatalogFile(path string) ([]catalog.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []catalog.Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
