package recorder

import (
	"strings"
)

// cleanMessage collapses all internal whitespace runs (including newlines
// and tabs) to single spaces and truncates to messageCap. Truncating an
// already-truncated message is a no-op.
func cleanMessage(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	return truncate(cleaned, messageCap)
}

// flattenContext filters caller context down to the allow-listed keys, caps
// each value, and joins the pairs as "key: value | key: value". Key order
// follows the allow-list so output is deterministic.
func flattenContext(ctx map[string]string) string {
	if len(ctx) == 0 {
		return ""
	}

	var parts []string
	for _, key := range contextAllowList {
		value, ok := ctx[key]
		if !ok || value == "" {
			continue
		}
		value = strings.Join(strings.Fields(value), " ")
		parts = append(parts, key+": "+truncate(value, contextValueCap))
	}
	return strings.Join(parts, " | ")
}

// truncate caps s at limit runes, never splitting a multi-byte character.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
