package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Keyer derives a cache key from a namespace and request parameters. Equal
// inputs yield equal keys whatever the map iteration order.
type Keyer interface {
	Key(namespace string, params map[string]any) (string, error)
}

// DefaultKeyer keys entries by hex(sha256(namespace + canonical JSON)).
type DefaultKeyer struct{}

var _ Keyer = (*DefaultKeyer)(nil)

func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns the lowercase hex SHA-256 of namespace followed by params in
// canonical JSON. Nil params add nothing, so only the namespace is hashed.
func (k *DefaultKeyer) Key(namespace string, params map[string]any) (string, error) {
	h := sha256.New()
	h.Write([]byte(namespace))
	if params != nil {
		body, err := canonicalize(params)
		if err != nil {
			return "", fmt.Errorf("cache: canonicalize params: %w", err)
		}
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalize encodes v as compact JSON with object keys sorted at every
// depth. Array order is kept and HTML characters are not escaped.
func canonicalize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		buf.WriteByte('{')
		for i, key := range slices.Sorted(maps.Keys(val)) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case map[string]string:
		m := make(map[string]any, len(val))
		for key, s := range val {
			m[key] = s
		}
		return writeCanonical(buf, m)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, v)
	}
}

func writeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
