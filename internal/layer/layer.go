// Package layer defines the generator layer capability and the registry that
// turns declared layer references into runnable layers.
package layer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kingrea/regen/internal/artifact"
	"github.com/kingrea/regen/internal/assetpath"
)

// Layer contributes one ordered slice of content to an artifact.
type Layer interface {
	// Name labels the layer; it is bound into the Context passed to Generate.
	Name() string
	// Generate appends the layer's contribution to ctx.Artifact.
	Generate(ctx *Context) error
	// WatchingObjects lists project paths whose changes should retrigger
	// generation. They are observed only.
	WatchingObjects() []string
}

// Context binds a layer to the artifact being regenerated.
type Context struct {
	Name       string
	Artifact   *artifact.Artifact
	ProjectDir string
	Logger     *slog.Logger
}

// NewContext builds the context for one layer invocation.
func NewContext(name string, a *artifact.Artifact, projectDir string, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Name:       name,
		Artifact:   a,
		ProjectDir: projectDir,
		Logger:     logger.With("layer", name),
	}
}

// ReadProjectFile reads a file by project path. Paths that climb above the
// project root are refused.
func (ctx *Context) ReadProjectFile(projectPath string) ([]byte, error) {
	key := assetpath.Canonical(projectPath)
	if key == "" || assetpath.Escapes(key) {
		return nil, fmt.Errorf("layer %s: path %q is outside the project", ctx.Name, projectPath)
	}
	return os.ReadFile(filepath.Join(ctx.ProjectDir, filepath.FromSlash(key)))
}
