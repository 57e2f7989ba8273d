package config

import (
	"log/slog"
	"strings"
)

// normalizeKeys walks a decoded JSON/YAML tree and rewrites any map key
// containing a space to its underscore form (e.g. "grid operator" ->
// "grid_operator", "voltage level" -> "voltage_level"), logging each
// rewrite, per §3's tolerant-spelling clarification. It mutates nothing the
// caller passed in directly — it returns a new tree — since map[string]any
// values from a YAML decode may be shared.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			nk := k
			if strings.Contains(k, " ") {
				nk = strings.ReplaceAll(k, " ", "_")
				slog.Warn("scenario document uses a deprecated spelling, normalizing", "from", k, "to", nk)
			}
			out[nk] = normalizeKeys(val)
		}
		return out
	case map[any]any: // gopkg.in/yaml.v3 occasionally decodes non-string-keyed maps this way
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			nk := ks
			if strings.Contains(ks, " ") {
				nk = strings.ReplaceAll(ks, " ", "_")
				slog.Warn("scenario document uses a deprecated spelling, normalizing", "from", ks, "to", nk)
			}
			out[nk] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeKeys(e)
		}
		return out
	default:
		return v
	}
}
