package artifact

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// BootstrapTemplate is written verbatim when a new artifact is created. It
// declares empty layer and parameter collections.
const BootstrapTemplate = `# regen controller artifact
kind: Controller
layers: []
parameters: []
`

// ErrNotController indicates the document kind is not a controller.
var ErrNotController = errors.New("artifact: document is not a controller")

// header is decoded first so foreign documents can be classified without
// forcing them into the controller schema.
type header struct {
	Kind string `yaml:"kind"`
}

// PeekKind returns the declared kind of a YAML document, or "" when the
// content is not a YAML mapping with a kind field.
func PeekKind(content []byte) string {
	var h header
	if err := yaml.Unmarshal(normalizeNewlines(content), &h); err != nil {
		return ""
	}
	return h.Kind
}

// Decode parses a controller document bound to path.
func Decode(path string, content []byte) (*Artifact, error) {
	var a Artifact
	if err := yaml.Unmarshal(normalizeNewlines(content), &a); err != nil {
		return nil, fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	if a.Kind != Kind {
		return nil, fmt.Errorf("%w: %s declares %q", ErrNotController, path, a.Kind)
	}
	if a.Layers == nil {
		a.Layers = []Layer{}
	}
	if a.Parameters == nil {
		a.Parameters = []Parameter{}
	}
	a.Bind(path)
	return &a, nil
}

// Encode renders the artifact as a YAML document with a stable field order.
func Encode(a *Artifact) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("artifact: nil artifact")
	}
	var buf bytes.Buffer
	buf.WriteString("# regen controller artifact\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("artifact: encode %s: %w", a.path, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("artifact: encode %s: %w", a.path, err)
	}
	return buf.Bytes(), nil
}

// Checksum returns the hex BLAKE3 digest of the encoded artifact. Two runs
// that produce identical content produce identical checksums.
func Checksum(a *Artifact) (string, error) {
	data, err := Encode(a)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
