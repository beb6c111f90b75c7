package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ValueTree is a read-only view over form values addressed by dotted paths.
type ValueTree map[string]any

// Get resolves a dotted path, returning nil when it does not exist.
func (v ValueTree) Get(path string) any {
	value, _ := getPath(v, path)
	return value
}

// String resolves a dotted path to a string, returning "" for other types.
func (v ValueTree) String(path string) string {
	text, _ := v.Get(path).(string)
	return text
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func getPath(root map[string]any, path string) (any, bool) {
	segments := splitPath(path)
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	var current any = root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at path. Missing map keys along the way are created;
// list indexes must already exist.
func setPath(root map[string]any, path string, value any) error {
	segments := splitPath(path)
	if root == nil || len(segments) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}

	var current any = root
	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return nil
			}
			next, ok := node[segment]
			if !ok || next == nil {
				next = make(map[string]any)
				node[segment] = next
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("%w: %q", ErrUnknownField, path)
			}
			if last {
				node[idx] = value
				return nil
			}
			if node[idx] == nil {
				node[idx] = make(map[string]any)
			}
			current = node[idx]
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, path)
		}
	}
	return nil
}

// deletePath removes a map key. Paths ending in a list index are left alone.
func deletePath(root map[string]any, path string) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}
	var parent any = root
	if len(segments) > 1 {
		node, ok := getPath(root, strings.Join(segments[:len(segments)-1], "."))
		if !ok {
			return
		}
		parent = node
	}
	if node, ok := parent.(map[string]any); ok {
		delete(node, segments[len(segments)-1])
	}
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

func copyTree(src map[string]any) map[string]any {
	if src == nil {
		return make(map[string]any)
	}
	return deepCopy(src).(map[string]any)
}

func equalValues(a, b any) bool {
	switch left := a.(type) {
	case map[string]any:
		right, ok := b.(map[string]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for k, v := range left {
			other, exists := right[k]
			if !exists || !equalValues(v, other) {
				return false
			}
		}
		return true
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !equalValues(left[i], right[i]) {
				return false
			}
		}
		return true
	case time.Time:
		right, ok := b.(time.Time)
		return ok && left.Equal(right)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// matchPattern reports whether a concrete path matches a registration
// pattern where "*" stands for any list index.
func matchPattern(pattern []string, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, segment := range pattern {
		if segment == "*" {
			idx, err := strconv.Atoi(path[i])
			if err != nil || idx < 0 || strconv.Itoa(idx) != path[i] {
				return false
			}
			continue
		}
		if segment != path[i] {
			return false
		}
	}
	return true
}

func coerce(raw string, kind ValueKind, loc *time.Location) (any, error) {
	switch kind {
	case ValueNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, err
		}
		return n, nil
	case ValueDate:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return time.Time{}, nil
		}
		t, err := time.ParseInLocation("2006-01-02", trimmed, loc)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	default:
		return raw, nil
	}
}
