// Package layers bundles the built-in generator layer types.
package layers

import (
	"github.com/kingrea/regen/internal/layer"
	"github.com/kingrea/regen/internal/layers/source"
	"github.com/kingrea/regen/internal/layers/states"
	"github.com/kingrea/regen/internal/layers/toggle"
)

// RegisterBuiltins installs all of the built-in layer factories into the
// provided registry.
func RegisterBuiltins(reg *layer.Registry) {
	if reg == nil {
		return
	}
	states.Register(reg)
	toggle.Register(reg)
	source.Register(reg)
}
