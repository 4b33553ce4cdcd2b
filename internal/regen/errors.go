package regen

import (
	"errors"

	"github.com/kingrea/regen/internal/assetpath"
)

var (
	// ErrNotPersisted reports a config without a storage location.
	ErrNotPersisted = assetpath.ErrNotPersisted
	// ErrWrongAssetType reports that the identifier resolves to something
	// other than a controller artifact.
	ErrWrongAssetType = errors.New("regen: identifier resolves to a non-controller asset")
	// ErrCreateLoadFailed reports that a freshly created artifact could not be
	// loaded back through the index.
	ErrCreateLoadFailed = errors.New("regen: created artifact could not be loaded")
	// ErrPathOccupied reports that the target path holds an artifact
	// registered under another identifier.
	ErrPathOccupied = errors.New("regen: target path belongs to another artifact")
)
