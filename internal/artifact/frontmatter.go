package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetaExtension is appended to an artifact path to locate its companion
// metadata record.
const MetaExtension = ".meta"

const metaFormatVersion = 2

var (
	// ErrMissingGUID indicates the metadata record carried no identifier.
	ErrMissingGUID = errors.New("artifact: metadata missing guid")
	// ErrMalformedMeta indicates the YAML record could not be parsed.
	ErrMalformedMeta = errors.New("artifact: malformed metadata")
)

// Meta is the companion record the host index uses to map identifier to
// path.
type Meta struct {
	FileFormatVersion int    `yaml:"fileFormatVersion"`
	GUID              string `yaml:"guid"`
}

// MetaPath returns the companion record path for an artifact path.
func MetaPath(path string) string {
	return path + MetaExtension
}

// IsMetaPath reports whether p names a companion record.
func IsMetaPath(p string) bool {
	return strings.HasSuffix(p, MetaExtension)
}

// NormalizeGUID strips separators and braces and lowercases the identifier.
func NormalizeGUID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.NewReplacer("-", "", "{", "", "}", "").Replace(id)
	return strings.ToLower(id)
}

// EncodeMeta renders the companion record for an identifier.
func EncodeMeta(guid string) ([]byte, error) {
	normalized := NormalizeGUID(guid)
	if normalized == "" {
		return nil, ErrMissingGUID
	}
	data, err := yaml.Marshal(Meta{FileFormatVersion: metaFormatVersion, GUID: normalized})
	if err != nil {
		return nil, fmt.Errorf("artifact: encode metadata: %w", err)
	}
	return data, nil
}

// ParseMeta decodes a companion record.
func ParseMeta(content []byte) (Meta, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return Meta{}, ErrMalformedMeta
	}
	var meta Meta
	if err := yaml.Unmarshal(normalizeNewlines(content), &meta); err != nil {
		return Meta{}, fmt.Errorf("%w: %v", ErrMalformedMeta, err)
	}
	meta.GUID = NormalizeGUID(meta.GUID)
	if meta.GUID == "" {
		return Meta{}, ErrMissingGUID
	}
	return meta, nil
}

// ReadMeta loads the companion record from an OS path.
func ReadMeta(osPath string) (Meta, error) {
	data, err := os.ReadFile(osPath)
	if err != nil {
		return Meta{}, err
	}
	return ParseMeta(data)
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
