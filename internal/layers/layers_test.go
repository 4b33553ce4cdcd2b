package layers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/generator"
	"github.com/kingrea/regen/internal/layer"
)

func newRegistry(t *testing.T) *layer.Registry {
	t.Helper()
	reg := layer.NewRegistry()
	RegisterBuiltins(reg)
	return reg
}

func runLayers(t *testing.T, projectDir string, refs ...generator.LayerRef) (*artifact.Artifact, error) {
	t.Helper()
	built, err := newRegistry(t).Build(refs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a := artifact.New("Assets/Out.controller")
	for _, l := range built {
		if err := l.Generate(layer.NewContext(l.Name(), a, projectDir, nil)); err != nil {
			return a, err
		}
	}
	return a, nil
}

func TestRegisterBuiltinsTypes(t *testing.T) {
	got := strings.Join(newRegistry(t).Types(), ",")
	if got != "source,states,toggle" {
		t.Fatalf("unexpected builtin types: %s", got)
	}
	RegisterBuiltins(nil)
}

func TestStatesLayer(t *testing.T) {
	a, err := runLayers(t, t.TempDir(), generator.LayerRef{
		Type:   "states",
		Name:   "Base",
		Config: map[string]any{"states": []any{"Idle", "Walk"}, "default": "Walk", "weight": 0.5},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(a.Layers) != 1 {
		t.Fatalf("expected one layer, got %d", len(a.Layers))
	}
	got := a.Layers[0]
	if got.Name != "Base" || got.DefaultState != "Walk" || got.Weight != 0.5 || len(got.States) != 2 {
		t.Fatalf("unexpected layer record: %+v", got)
	}
}

func TestStatesLayerRejectsBadConfig(t *testing.T) {
	reg := newRegistry(t)
	cases := []layer.Config{
		{},
		{"states": []any{"Idle", "Idle"}},
		{"states": []any{"Idle"}, "default": "Run"},
		{"states": "Idle", "weight": "heavy"},
	}
	for i, cfg := range cases {
		if _, err := reg.Resolve("states", "Base", cfg); err == nil {
			t.Fatalf("case %d: expected error for %v", i, cfg)
		}
	}
}

func TestToggleLayer(t *testing.T) {
	a, err := runLayers(t, t.TempDir(), generator.LayerRef{
		Type:   "toggle",
		Name:   "Crouch",
		Config: map[string]any{"parameter": "IsCrouching", "default": true},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	p, ok := a.Parameter("IsCrouching")
	if !ok || p.Type != artifact.ParameterBool || p.Default != true {
		t.Fatalf("unexpected parameter: %+v", p)
	}
	if len(a.Layers) != 1 || a.Layers[0].DefaultState != "On" {
		t.Fatalf("unexpected layers: %+v", a.Layers)
	}
	if len(a.SubAssets) != 2 {
		t.Fatalf("expected two motion sub-assets, got %d", len(a.SubAssets))
	}
	if a.Layers[0].States[0].Motion != artifact.SubAssetID("Crouch", "Motion", "Off") {
		t.Fatalf("state motion does not reference its sub-asset: %+v", a.Layers[0].States[0])
	}
}

func TestToggleParameterClash(t *testing.T) {
	_, err := runLayers(t, t.TempDir(),
		generator.LayerRef{Type: "toggle", Name: "A", Config: map[string]any{"parameter": "Flag"}},
		generator.LayerRef{Type: "toggle", Name: "B", Config: map[string]any{"parameter": "Flag"}},
	)
	if err == nil {
		t.Fatalf("expected duplicate parameter error")
	}
}

func TestSourceLayer(t *testing.T) {
	dir := t.TempDir()
	src := `
default: Run
states:
  - name: Walk
    motion: clips/walk
  - name: Run
    speed: 1.5
parameters:
  - name: Speed
    type: float
    default: 0
`
	if err := os.MkdirAll(filepath.Join(dir, "Assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Assets", "locomotion.yaml"), []byte(src), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	ref := generator.LayerRef{Type: "source", Name: "Locomotion", Config: map[string]any{"file": "/Assets/locomotion.yaml"}}

	built, err := newRegistry(t).Build([]generator.LayerRef{ref})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if watched := built[0].WatchingObjects(); len(watched) != 1 || watched[0] != "Assets/locomotion.yaml" {
		t.Fatalf("unexpected watch set: %v", watched)
	}

	a, err := runLayers(t, dir, ref)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(a.Layers) != 1 || a.Layers[0].DefaultState != "Run" {
		t.Fatalf("unexpected layers: %+v", a.Layers)
	}
	if a.Layers[0].States[0].Speed != 1 || a.Layers[0].States[1].Speed != 1.5 {
		t.Fatalf("unexpected speeds: %+v", a.Layers[0].States)
	}
	if _, ok := a.Parameter("Speed"); !ok {
		t.Fatalf("parameter not emitted")
	}
	if len(a.SubAssets) != 2 || a.SubAssets[0].Data["clip"] != "clips/walk" {
		t.Fatalf("unexpected sub-assets: %+v", a.SubAssets)
	}
}

func TestSourceLayerMissingFile(t *testing.T) {
	_, err := runLayers(t, t.TempDir(), generator.LayerRef{Type: "source", Config: map[string]any{"file": "Assets/none.yaml"}})
	if err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := newRegistry(t).Resolve("source", "x", nil); err == nil {
		t.Fatalf("expected missing file option error")
	}
}

func TestSourceLayerRejectsEscapingFile(t *testing.T) {
	for _, file := range []string{"../../etc/passwd", "Assets/../../x.yaml"} {
		if _, err := newRegistry(t).Resolve("source", "x", layer.Config{"file": file}); err == nil {
			t.Fatalf("expected %q to be rejected", file)
		}
	}
	l, err := newRegistry(t).Resolve("source", "x", layer.Config{"file": "/Assets/../Shared/loco.yaml"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if watched := l.WatchingObjects(); len(watched) != 1 || watched[0] != "Shared/loco.yaml" {
		t.Fatalf("unexpected watch set: %v", watched)
	}
}
