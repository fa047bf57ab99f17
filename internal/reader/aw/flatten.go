package aw

import "github.com/dratasich/log-activity/internal/model"

// Flatten collapses a nested JSON payload into a flat field bag keyed
// by leaf name. Watcher payloads are shallow; the occasional nested
// object (e.g. web tab metadata) flattens to its leaf keys. Watcher
// payloads do not repeat leaf names; if one ever does, which value
// wins is unspecified. Lists are preserved as-is (git issue
// references stay a list).
func Flatten(payload map[string]any) model.Fields {
	out := make(model.Fields, len(payload))
	var walk func(m map[string]any)
	walk = func(m map[string]any) {
		for k, v := range m {
			if nested, ok := v.(map[string]any); ok {
				walk(nested)
				continue
			}
			out[k] = v
		}
	}
	walk(payload)
	return out
}
