// Package builtin ships the plugins bundled with the host: a clock,
// a headline ticker, and a now-playing display. They double as
// reference implementations of the runtime contract.
package builtin

import (
	"image/color"
)

// The helpers below read plugin settings blocks, which arrive as
// generic JSON values. Missing or mistyped keys fall back to the
// provided default rather than failing the plugin.

func getString(settings map[string]any, key, def string) string {
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getBool(settings map[string]any, key string, def bool) bool {
	if v, ok := settings[key].(bool); ok {
		return v
	}
	return def
}

func getInt(settings map[string]any, key string, def int) int {
	switch v := settings[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func getStrings(settings map[string]any, key string) []string {
	raw, ok := settings[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// getColor reads an [r, g, b] triple.
func getColor(settings map[string]any, key string, def color.RGBA) color.RGBA {
	raw, ok := settings[key].([]any)
	if !ok || len(raw) != 3 {
		return def
	}

	vals := make([]uint8, 3)
	for i, item := range raw {
		f, ok := item.(float64)
		if !ok || f < 0 || f > 255 {
			return def
		}
		vals[i] = uint8(f)
	}
	return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: 255}
}
