package layer

import (
	"fmt"
	"strings"
)

// String returns a trimmed string option, or fallback when absent.
func (c Config) String(key, fallback string) (string, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("config %s: expected string, got %T", key, raw)
	}
	if s = strings.TrimSpace(s); s == "" {
		return fallback, nil
	}
	return s, nil
}

// Strings returns a list option. A single string is accepted as a one-item list.
func (c Config) Strings(key string) ([]string, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		return []string{strings.TrimSpace(v)}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("config %s[%d]: expected string, got %T", key, i, item)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("config %s: expected list, got %T", key, raw)
	}
}

// Float returns a numeric option, or fallback when absent.
func (c Config) Float(key string, fallback float64) (float64, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("config %s: expected number, got %T", key, raw)
	}
}

// Bool returns a boolean option, or fallback when absent.
func (c Config) Bool(key string, fallback bool) (bool, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("config %s: expected bool, got %T", key, raw)
	}
	return b, nil
}
