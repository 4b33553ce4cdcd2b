// Package contracts checks what a generator layer contributed to an artifact
// against the layer contract: each layer appends exactly one layer record of
// its own name and never removes earlier content.
package contracts

import "github.com/kingrea/regen/internal/artifact"

// Snapshot records the shape of an artifact before a layer runs.
type Snapshot struct {
	Layers     int
	Parameters int
	SubAssets  int
}

// Take captures the current shape of a.
func Take(a *artifact.Artifact) Snapshot {
	if a == nil {
		return Snapshot{}
	}
	return Snapshot{
		Layers:     len(a.Layers),
		Parameters: len(a.Parameters),
		SubAssets:  len(a.SubAssets),
	}
}
