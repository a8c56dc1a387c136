package recorder

import (
	"strings"
	"testing"
)

func TestCleanMessage_CollapsesWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"newlines", "hello\nworld", "hello world"},
		{"mixed runs", "a \t b\n\n c", "a b c"},
		{"leading and trailing", "  padded  ", "padded"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanMessage(tt.in); got != tt.want {
				t.Errorf("cleanMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanMessage_TruncationIdempotent(t *testing.T) {
	long := strings.Repeat("a", messageCap*2)

	once := cleanMessage(long)
	twice := cleanMessage(once)

	if once != twice {
		t.Error("cleanMessage() of its own output differs; truncation must be idempotent")
	}
	if len(once) != messageCap {
		t.Errorf("truncated length = %d, want %d", len(once), messageCap)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	s := strings.Repeat("é", 10)

	got := truncate(s, 5)
	if got != strings.Repeat("é", 5) {
		t.Errorf("truncate() = %q, want 5 intact runes", got)
	}
}

func TestFlattenContext(t *testing.T) {
	got := flattenContext(map[string]string{
		"audience_level":   "undergraduate",
		"analysis_type":    "bias",
		"unrelated":        "dropped",
		"research_context": "",
	})

	// Key order follows the allow-list, not map iteration order.
	want := "analysis_type: bias | audience_level: undergraduate"
	if got != want {
		t.Errorf("flattenContext() = %q, want %q", got, want)
	}
}

func TestFlattenContext_Empty(t *testing.T) {
	if got := flattenContext(nil); got != "" {
		t.Errorf("flattenContext(nil) = %q, want empty", got)
	}
	if got := flattenContext(map[string]string{"unknown": "x"}); got != "" {
		t.Errorf("flattenContext() with no allow-listed keys = %q, want empty", got)
	}
}

func TestFlattenContext_ValueCapped(t *testing.T) {
	long := strings.Repeat("v", contextValueCap*2)

	got := flattenContext(map[string]string{"vignette_sample": long})
	want := "vignette_sample: " + strings.Repeat("v", contextValueCap)
	if got != want {
		t.Errorf("flattenContext() value not capped at %d", contextValueCap)
	}
}
