package validation

import "testing"

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims whitespace", "  hello  ", 100, "hello"},
		{"within limit", "short", 10, "short"},
		{"truncates", "abcdefghij", 5, "abcde"},
		{"trim then truncate", "   abcdefghij   ", 5, "abcde"},
		{"zero max means unlimited", "anything goes here", 0, "anything goes here"},
		{"empty input", "", 10, ""},
		{"whitespace only", " \n\t ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndLimit(tt.input, tt.max); got != tt.want {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestMaxMessageLength(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"default", "", 4000},
		{"custom", "500", 500},
		{"invalid falls back", "not-a-number", 4000},
		{"non-positive falls back", "0", 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_MESSAGE_LENGTH", tt.env)
			if got := MaxMessageLength(); got != tt.want {
				t.Errorf("MaxMessageLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxConversationNameLength(t *testing.T) {
	t.Setenv("MAX_CONVERSATION_NAME_LENGTH", "")
	if got := MaxConversationNameLength(); got != 120 {
		t.Errorf("MaxConversationNameLength() = %d, want 120", got)
	}
	t.Setenv("MAX_CONVERSATION_NAME_LENGTH", "64")
	if got := MaxConversationNameLength(); got != 64 {
		t.Errorf("MaxConversationNameLength() = %d, want 64", got)
	}
}
