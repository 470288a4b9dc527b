// Package filter renders a subset of field configs as a filter bar and
// produces the query string consumed by the list engine. Output is
// opaque to callers; the list engine appends it verbatim to the
// request URL.
package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Change is a filter update handed to the list engine. ResetPage tells
// the engine whether the current page should snap back to 1. This
// replaces the old convention of smuggling a "#" marker inside the
// query string.
type Change struct {
	Query     string
	ResetPage bool
}

// ChangeFromQuery adapts a raw query string from a wire client that
// still uses the "#" marker to suppress the pagination reset.
func ChangeFromQuery(q string) Change {
	return Change{Query: q, ResetPage: !strings.Contains(q, "#")}
}

// Build joins the non-empty values into "key=value" pairs, rendering
// slices as "key=[a,b,c]". Keys are emitted in sorted order so equal
// value sets produce equal strings. defaultFilter, when set, is always
// appended last.
func Build(values map[string]any, defaultFilter string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		if s, ok := render(values[k]); ok {
			parts = append(parts, k+"="+s)
		}
	}
	if defaultFilter != "" {
		parts = append(parts, defaultFilter)
	}
	return strings.Join(parts, "&")
}

func render(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case []string:
		if len(x) == 0 {
			return "", false
		}
		return "[" + strings.Join(x, ",") + "]", true
	case []any:
		if len(x) == 0 {
			return "", false
		}
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = fmt.Sprintf("%v", item)
		}
		return "[" + strings.Join(items, ",") + "]", true
	default:
		return fmt.Sprintf("%v", x), true
	}
}
