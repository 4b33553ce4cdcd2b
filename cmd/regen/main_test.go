package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/regen/internal/assetpath"
	"github.com/kingrea/regen/internal/generator"
)

func execute(t *testing.T, projectDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--project", projectDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, root, projectPath, content string) {
	t.Helper()
	osPath := filepath.Join(root, filepath.FromSlash(projectPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(osPath), 0o755))
	require.NoError(t, os.WriteFile(osPath, []byte(content), 0o644))
}

const genConfig = `layers:
  - type: states
    name: Base
    config: {states: [Idle, Walk]}
  - type: toggle
    name: Crouch
`

func TestGenerateLifecycle(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "init")
	require.NoError(t, err)
	writeFile(t, root, "Assets/Foo/Gen.cfg", genConfig)

	out, err := execute(t, root, "generate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created Assets/Foo/Gen.generated.controller")
	assert.FileExists(t, filepath.Join(root, "Assets", "Foo", "Gen.generated.controller.meta"))

	cfg, err := generator.Load(root, "Assets/Foo/Gen.cfg")
	require.NoError(t, err)
	id := cfg.Identifier()
	require.NotEmpty(t, id, "the generated identifier is saved")

	out, err = execute(t, root, "generate", "Assets/Foo/Gen.cfg")
	require.NoError(t, err, out)
	assert.Contains(t, out, "regenerated Assets/Foo/Gen.generated.controller")

	history, err := os.ReadFile(filepath.Join(root, ".regen", "logs", "history.log"))
	require.NoError(t, err)
	assert.Contains(t, string(history), "created Assets/Foo/Gen.generated.controller")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Assets", "Bar"), 0o755))
	for _, suffix := range []string{"", ".meta"} {
		require.NoError(t, os.Rename(
			filepath.Join(root, "Assets", "Foo", "Gen.generated.controller"+suffix),
			filepath.Join(root, "Assets", "Bar", "Out.controller"+suffix),
		))
	}
	out, err = execute(t, root, "sync")
	require.NoError(t, err, out)
	assert.Contains(t, out, "retargeted Assets/Foo/Gen.cfg")

	cfg, err = generator.Load(root, "Assets/Foo/Gen.cfg")
	require.NoError(t, err)
	assert.Equal(t, id, cfg.Identifier())
	assert.Equal(t, assetpath.Relative("../Bar/Out.controller"), cfg.Path())

	out, err = execute(t, root, "resolve")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Assets/Foo/../Bar/Out.controller")
	assert.Contains(t, out, "found")

	out, err = execute(t, root, "generate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "regenerated Assets/Bar/Out.controller")
}

func TestRetargetCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Assets/Foo/Gen.cfg", "path: {kind: absolute, value: /Assets/Old.controller}\n"+genConfig)

	out, err := execute(t, root, "retarget", "Assets/Foo/Gen.cfg", "Assets/New/Out.controller")
	require.NoError(t, err, out)
	cfg, err := generator.Load(root, "Assets/Foo/Gen.cfg")
	require.NoError(t, err)
	assert.Equal(t, assetpath.Absolute("/Assets/New/Out.controller"), cfg.Path())

	out, err = execute(t, root, "retarget", "Assets/Foo/Gen.cfg", "Assets/New/Out.controller")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
}

func TestGenerateReportsFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Assets/Bad.cfg", "layers:\n  - type: nope\n")
	writeFile(t, root, "Assets/Good.cfg", genConfig)

	out, err := execute(t, root, "generate")
	require.Error(t, err)
	assert.Contains(t, out, "failed Assets/Bad.cfg")
	assert.Contains(t, out, "created Assets/Good.generated.controller")
}

func TestFailedFirstRunKeepsIdentifier(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Assets/Gen.cfg", "layers:\n  - type: source\n    name: Loco\n    config: {file: Assets/loco.yaml}\n")

	_, err := execute(t, root, "generate")
	require.Error(t, err)
	cfg, err := generator.Load(root, "Assets/Gen.cfg")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Identifier(), "identifier written to the meta record is saved")

	writeFile(t, root, "Assets/loco.yaml", "states:\n  - name: Idle\n")
	out, err := execute(t, root, "generate")
	require.NoError(t, err, out)
	again, err := generator.Load(root, "Assets/Gen.cfg")
	require.NoError(t, err)
	assert.Equal(t, cfg.Identifier(), again.Identifier())
}

func TestGenerateWithoutConfigs(t *testing.T) {
	_, err := execute(t, t.TempDir(), "generate")
	require.Error(t, err)
}

func TestLayersCommandListsPlugins(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "init")
	require.NoError(t, err)
	writeFile(t, root, ".regen/layers/idle.yaml", "id: idle\ndescription: Idle only\nstates: [{name: Idle}]\n")

	out, err := execute(t, root, "layers")
	require.NoError(t, err)
	for _, typ := range []string{"idle", "source", "states", "toggle"} {
		assert.Contains(t, out, typ)
	}
	assert.Contains(t, out, "Idle only")
}
