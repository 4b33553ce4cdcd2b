package assetdb

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
)

// Refresh rescans companion metadata records and rebuilds the identifier
// index. Cached objects without pending changes are evicted so the next load
// observes the files on disk.
func (db *Database) Refresh() error {
	guids := map[string]string{}
	err := filepath.WalkDir(db.root, func(osPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if osPath != db.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !artifact.IsMetaPath(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(db.root, osPath)
		if err != nil {
			return err
		}
		assetPath := strings.TrimSuffix(filepath.ToSlash(rel), artifact.MetaExtension)
		meta, err := artifact.ReadMeta(osPath)
		if err != nil {
			db.logger.Warn("skipping unreadable metadata", "path", filepath.ToSlash(rel), "err", err)
			return nil
		}
		if existing, ok := guids[meta.GUID]; ok {
			db.logger.Warn("duplicate identifier", "guid", meta.GUID, "kept", existing, "ignored", assetPath)
			return nil
		}
		guids[meta.GUID] = assetPath
		return nil
	})
	if err != nil {
		return fmt.Errorf("assetdb: scan %s: %w", db.root, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.guids = guids
	for key := range db.objects {
		if _, dirty := db.dirty[key]; !dirty {
			delete(db.objects, key)
		}
	}
	db.logger.Debug("index refreshed", "identifiers", len(guids))
	return nil
}

// Identifiers returns a copy of the identifier to path index.
func (db *Database) Identifiers() map[string]string {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[string]string, len(db.guids))
	for k, v := range db.guids {
		out[k] = v
	}
	return out
}

// IdentifierAtPath returns the identifier registered for a project path.
func (db *Database) IdentifierAtPath(projectPath string) (string, bool) {
	key := assetpath.Canonical(projectPath)
	db.mu.Lock()
	defer db.mu.Unlock()
	for guid, p := range db.guids {
		if p == key {
			return guid, true
		}
	}
	return "", false
}
