// Package form owns validated form state and the submit/fetch
// lifecycle for create and edit screens, and renders field configs
// into bound controls.
package form

import (
	"strconv"
	"strings"
)

// rowIDKey is the synthetic identity attached to every field-array
// row. Errors are tracked by this id so a reorder or removal cannot
// misattribute a message, and it is stripped before submit.
const rowIDKey = "_rowId"

// getPath resolves a dot-path into nested maps and slices. Numeric
// segments index into []map[string]any values.
func getPath(state map[string]any, path string) (any, bool) {
	var cur any = state
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []map[string]any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// setPath writes a value at a dot-path, creating intermediate maps as
// needed. Writing through a slice requires the row to exist already.
func setPath(state map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	var cur any = state
	for i := 0; i < len(segs)-1; i++ {
		seg := segs[i]
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				m := map[string]any{}
				node[seg] = m
				cur = m
				continue
			}
			cur = next
		case []map[string]any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return
			}
			cur = node[idx]
		default:
			return
		}
	}
	last := segs[len(segs)-1]
	switch node := cur.(type) {
	case map[string]any:
		node[last] = value
	case []map[string]any:
		idx, err := strconv.Atoi(last)
		if err == nil && idx >= 0 && idx < len(node) {
			// Replacing a whole row is only valid with a map value.
			if m, ok := value.(map[string]any); ok {
				node[idx] = m
			}
		}
	}
}

// deepCopy clones the nested structure of a form state so baselines
// never alias live values.
func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = deepCopy(val)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, row := range x {
			out[i] = deepCopy(row).(map[string]any)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// stripRowIDs removes the synthetic array-row ids from a payload copy
// before it goes on the wire.
func stripRowIDs(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if k == rowIDKey {
				continue
			}
			out[k] = stripRowIDs(val)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, row := range x {
			out[i] = stripRowIDs(row).(map[string]any)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = stripRowIDs(val)
		}
		return out
	default:
		return v
	}
}
