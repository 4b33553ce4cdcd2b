// Package regen regenerates controller artifacts from generator configs. It
// locates the artifact a config names by identifier, creates it on first use,
// and rebuilds its content from the config's ordered layers.
package regen

import "github.com/kingrea/regen/internal/assetdb"

// Index is the host asset index the orchestrator works through.
// *assetdb.Database satisfies it.
type Index interface {
	Root() string
	FindPathByIdentifier(id string) (string, bool)
	IdentifierAtPath(projectPath string) (string, bool)
	LoadByPath(projectPath string) (assetdb.Object, error)
	ListCoLocatedObjects(projectPath string) ([]assetdb.Object, error)
	Contains(obj assetdb.Object) bool
	Exists(projectPath string) bool
	WriteFile(projectPath string, data []byte) error
	Refresh() error
	Destroy(obj assetdb.Object) error
	MarkDirty(obj assetdb.Object)
}

var _ Index = (*assetdb.Database)(nil)
