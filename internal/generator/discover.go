package generator

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks projectDir and returns the project path of every file with
// the given extension, skipping dot directories. Results are sorted.
func Discover(projectDir, extension string) ([]string, error) {
	extension = strings.ToLower(strings.TrimSpace(extension))
	if extension == "" {
		return nil, fmt.Errorf("generator: discovery extension is required")
	}
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("generator: resolve project dir: %w", err)
	}
	var out []string
	err = filepath.WalkDir(root, func(osPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if osPath != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(d.Name())) != extension {
			return nil
		}
		rel, err := filepath.Rel(root, osPath)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generator: discover in %s: %w", projectDir, err)
	}
	sort.Strings(out)
	return out, nil
}

// LoadAll loads every discovered config, stopping at the first failure.
func LoadAll(projectDir, extension string) ([]*Config, error) {
	locations, err := Discover(projectDir, extension)
	if err != nil {
		return nil, err
	}
	configs := make([]*Config, 0, len(locations))
	for _, location := range locations {
		cfg, err := Load(projectDir, location)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
