// Package assetdb is the file-system-backed asset index. It maps artifact
// identifiers to project paths by scanning companion metadata records, loads
// objects by path and persists objects that were marked dirty.
package assetdb

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
)

// Object is anything the index can load from a project path.
type Object interface {
	ObjectKind() string
	ObjectID() string
	AssetPath() string
}

// Foreign is a loaded file that is not a controller artifact.
type Foreign struct {
	Kind string
	path string
}

// ObjectKind implements Object.
func (f *Foreign) ObjectKind() string { return f.Kind }

// ObjectID implements Object.
func (f *Foreign) ObjectID() string { return artifact.RootID }

// AssetPath implements Object.
func (f *Foreign) AssetPath() string { return f.path }

const (
	kindUnknown = "Unknown"
	kindFolder  = "Folder"
)

// Database indexes the project tree rooted at a directory.
type Database struct {
	root   string
	logger *slog.Logger

	mu      sync.Mutex
	guids   map[string]string
	objects map[string]Object
	dirty   map[string]struct{}
}

// Option customizes a Database.
type Option func(*Database)

// WithLogger routes index diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(db *Database) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// Open indexes the project tree at root.
func Open(root string, opts ...Option) (*Database, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assetdb: resolve root: %w", err)
	}
	db := &Database{
		root:    abs,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		guids:   map[string]string{},
		objects: map[string]Object{},
		dirty:   map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.Refresh(); err != nil {
		return nil, err
	}
	return db, nil
}

// Root returns the absolute project tree root.
func (db *Database) Root() string {
	return db.root
}

// OSPath converts a project path to a path on disk.
func (db *Database) OSPath(projectPath string) string {
	return filepath.Join(db.root, filepath.FromSlash(assetpath.Canonical(projectPath)))
}

// FindPathByIdentifier returns the project path registered under id.
func (db *Database) FindPathByIdentifier(id string) (string, bool) {
	key := artifact.NormalizeGUID(id)
	if key == "" {
		return "", false
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.guids[key]
	return p, ok
}

// LoadByPath loads the object stored at a project path. It returns a nil
// object and nil error when nothing exists there. Repeated loads return the
// same object until a Refresh evicts it.
func (db *Database) LoadByPath(projectPath string) (Object, error) {
	key := assetpath.Canonical(projectPath)
	if key == "" {
		return nil, nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if obj, ok := db.objects[key]; ok {
		return obj, nil
	}
	obj, err := db.load(key)
	if err != nil || obj == nil {
		return nil, err
	}
	db.objects[key] = obj
	return obj, nil
}

func (db *Database) load(key string) (Object, error) {
	osPath := db.OSPath(key)
	info, err := os.Stat(osPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("assetdb: stat %s: %w", key, err)
	}
	if info.IsDir() {
		return &Foreign{Kind: kindFolder, path: key}, nil
	}
	data, err := os.ReadFile(osPath)
	if err != nil {
		return nil, fmt.Errorf("assetdb: read %s: %w", key, err)
	}
	kind := artifact.PeekKind(data)
	switch kind {
	case artifact.Kind:
		a, err := artifact.Decode(key, data)
		if err != nil {
			return nil, fmt.Errorf("assetdb: %w", err)
		}
		return a, nil
	case "":
		return &Foreign{Kind: kindUnknown, path: key}, nil
	default:
		return &Foreign{Kind: kind, path: key}, nil
	}
}

// Contains reports whether obj is the object currently cached for its path.
// Handles evicted by Refresh are no longer contained.
func (db *Database) Contains(obj Object) bool {
	if obj == nil {
		return false
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	cached, ok := db.objects[assetpath.Canonical(obj.AssetPath())]
	return ok && cached == obj
}

// ListCoLocatedObjects returns every object stored in the file at a project
// path: the root first, then any sub-assets.
func (db *Database) ListCoLocatedObjects(projectPath string) ([]Object, error) {
	obj, err := db.LoadByPath(projectPath)
	if err != nil || obj == nil {
		return nil, err
	}
	out := []Object{obj}
	if a, ok := obj.(*artifact.Artifact); ok {
		for _, sub := range a.SubAssetObjects() {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Destroy removes a sub-asset from its artifact and marks the artifact dirty.
// Roots are never destroyed.
func (db *Database) Destroy(obj Object) error {
	sub, ok := obj.(*artifact.SubAsset)
	if !ok {
		return fmt.Errorf("assetdb: cannot destroy %s %q at %s", obj.ObjectKind(), obj.ObjectID(), obj.AssetPath())
	}
	owner, err := db.LoadByPath(sub.AssetPath())
	if err != nil {
		return err
	}
	a, ok := owner.(*artifact.Artifact)
	if !ok {
		return fmt.Errorf("assetdb: sub-asset %s has no artifact at %s", sub.ObjectID(), sub.AssetPath())
	}
	if a.RemoveSubAsset(sub.ObjectID()) {
		db.MarkDirty(a)
	}
	return nil
}

// MarkDirty schedules obj to be written by SaveDirty.
func (db *Database) MarkDirty(obj Object) {
	if obj == nil {
		return
	}
	key := assetpath.Canonical(obj.AssetPath())
	if key == "" {
		return
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, cached := db.objects[key]; !cached {
		db.objects[key] = obj
	}
	db.dirty[key] = struct{}{}
}

// IsDirty reports whether a project path has unsaved changes.
func (db *Database) IsDirty(projectPath string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.dirty[assetpath.Canonical(projectPath)]
	return ok
}

// SaveDirty writes every dirty artifact to disk and returns the written
// project paths in sorted order.
func (db *Database) SaveDirty() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	keys := make([]string, 0, len(db.dirty))
	for key := range db.dirty {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var written []string
	for _, key := range keys {
		a, ok := db.objects[key].(*artifact.Artifact)
		if !ok {
			delete(db.dirty, key)
			continue
		}
		data, err := artifact.Encode(a)
		if err != nil {
			return written, err
		}
		if err := db.writeFile(key, data); err != nil {
			return written, err
		}
		delete(db.dirty, key)
		written = append(written, key)
		db.logger.Debug("saved artifact", "path", key)
	}
	return written, nil
}

// WriteFile writes raw bytes to a project path, creating parent folders.
func (db *Database) WriteFile(projectPath string, data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writeFile(assetpath.Canonical(projectPath), data)
}

func (db *Database) writeFile(key string, data []byte) error {
	if key == "" || assetpath.Escapes(key) {
		return fmt.Errorf("assetdb: path %q is outside the project", key)
	}
	osPath := db.OSPath(key)
	if err := os.MkdirAll(filepath.Dir(osPath), 0o755); err != nil {
		return fmt.Errorf("assetdb: ensure dir for %s: %w", key, err)
	}
	if err := os.WriteFile(osPath, data, 0o644); err != nil {
		return fmt.Errorf("assetdb: write %s: %w", key, err)
	}
	return nil
}

// Exists reports whether anything is stored at a project path.
func (db *Database) Exists(projectPath string) bool {
	_, err := os.Stat(db.OSPath(projectPath))
	return err == nil
}
