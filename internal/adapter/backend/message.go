package backend

import "encoding/json"

// extractMessage digs a human-readable message out of a failure
// envelope. The remote API nests its errors inconsistently, so the
// probes run from most-specific to least:
//
//	data.error.error.message
//	data.error.message
//	error.message
//	message
//
// The first non-empty string wins; fallback covers bodies that carry
// none of them.
func extractMessage(raw []byte, fallback string) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}

	paths := [][]string{
		{"data", "error", "error", "message"},
		{"data", "error", "message"},
		{"error", "message"},
		{"message"},
	}
	for _, path := range paths {
		if msg := dig(body, path); msg != "" {
			return msg
		}
	}
	return fallback
}

func dig(m map[string]any, path []string) string {
	cur := any(m)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}
