package fieldmap

import (
	"fmt"
	"strings"
)

// Path locates a value in a raw record, either a top level key or a key inside a
// top level object.
type Path struct {
	nested bool
	parent string
	key    string
}

func Flat(key string) Path {
	return Path{key: key}
}

func Nested(parent, child string) Path {
	return Path{nested: true, parent: parent, key: child}
}

func (p Path) IsNested() bool {
	return p.nested
}

// Keys returns the keys walked to reach the value.
func (p Path) Keys() []string {
	if p.nested {
		return []string{p.parent, p.key}
	}
	return []string{p.key}
}

func (p Path) String() string {
	return strings.Join(p.Keys(), ".")
}

func PathFromKeys(keys []string) (Path, error) {
	for _, k := range keys {
		if k == "" {
			return Path{}, fmt.Errorf("path %q has an empty key", keys)
		}
	}
	switch len(keys) {
	case 1:
		return Flat(keys[0]), nil
	case 2:
		return Nested(keys[0], keys[1]), nil
	}
	return Path{}, fmt.Errorf("path must have 1 or 2 keys, got %d", len(keys))
}

// Resolve returns the value at the path or nil if there is none. A nested path whose
// parent is absent, null or not an object resolves to nil.
func Resolve(record map[string]any, path Path) any {
	if !path.nested {
		return record[path.key]
	}
	parent, ok := record[path.parent].(map[string]any)
	if !ok {
		return nil
	}
	return parent[path.key]
}

// MalformedParent reports whether a nested path's parent is present but is not an object.
func MalformedParent(record map[string]any, path Path) bool {
	if !path.nested {
		return false
	}
	parent, ok := record[path.parent]
	if !ok || parent == nil {
		return false
	}
	_, isObject := parent.(map[string]any)
	return !isObject
}
