package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/layer"
)

// folderSwapLayer replaces the artifact file with a folder so the following
// save cannot write it.
type folderSwapLayer struct {
	layer.Base
	osPath string
}

func (l *folderSwapLayer) Generate(ctx *layer.Context) error {
	ctx.Artifact.AddLayer(artifact.Layer{Name: ctx.Name, Weight: 1})
	if err := os.Remove(l.osPath); err != nil {
		return err
	}
	return os.Mkdir(l.osPath, 0o755)
}

func TestSaveFailureAfterCreateKeepsIdentifier(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Assets/Gen.cfg", "layers:\n  - type: swap\n")
	artifactPath := filepath.Join(root, "Assets", "Gen.generated.controller")

	s, err := openSession(root, sessionOptions{})
	require.NoError(t, err)
	defer s.Close()
	s.registry.MustRegister("swap", "replaces the artifact with a folder", func(name string, _ layer.Config) (layer.Layer, error) {
		return &folderSwapLayer{Base: layer.NewBase(name), osPath: artifactPath}, nil
	})

	out := s.generate(context.Background(), "Assets/Gen.cfg")
	require.Error(t, out.Err)
	assert.True(t, out.Created)

	cfg, err := generator.Load(root, "Assets/Gen.cfg")
	require.NoError(t, err)
	meta, err := artifact.ReadMeta(artifactPath + artifact.MetaExtension)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Identifier())
	assert.Equal(t, meta.GUID, cfg.Identifier())
}
