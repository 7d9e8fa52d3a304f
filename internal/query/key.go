package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached read. It is an ordered tuple of a kind followed by
// parameters; parameters are compared by their canonical JSON encoding, so
// two keys built from equal values are equal.
type Key struct {
	parts []string
}

func NewKey(kind string, params ...any) Key {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, encodePart(kind))
	for _, p := range params {
		parts = append(parts, encodePart(p))
	}
	return Key{parts: parts}
}

func encodePart(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(buf)
}

// String returns the canonical form, also used as the map identity.
func (k Key) String() string {
	return "[" + strings.Join(k.parts, ",") + "]"
}

func (k Key) Len() int { return len(k.parts) }

func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether every element of prefix matches the leading
// elements of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.parts) > len(k.parts) {
		return false
	}
	for i, p := range prefix.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}
