package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        string
		expectError bool
	}{
		{
			name: "plain name unchanged",
			raw:  "Alice",
			want: "Alice",
		},
		{
			name: "name with spaces unchanged",
			raw:  "Alice B 42",
			want: "Alice B 42",
		},
		{
			name: "max length accepted",
			raw:  strings.Repeat("a", 20),
			want: strings.Repeat("a", 20),
		},
		{
			name:        "over max length rejected",
			raw:         strings.Repeat("a", 21),
			expectError: true,
		},
		{
			name:        "empty rejected",
			raw:         "",
			expectError: true,
		},
		{
			name:        "reserved system name rejected",
			raw:         "system",
			expectError: true,
		},
		{
			name:        "reserved name rejected case insensitively",
			raw:         "SyStEm",
			expectError: true,
		},
		{
			name: "punctuation stripped",
			raw:  "Al!ce<script>",
			want: "Alcescript",
		},
		{
			name:        "punctuation only becomes empty",
			raw:         "!!!",
			expectError: true,
		},
		{
			name:        "stripping can expose reserved name",
			raw:         "sys<tem>",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Username(tt.raw)

			if tt.expectError {
				if !errors.Is(err, ErrInvalidUsername) {
					t.Fatalf("Username(%q) error = %v, want ErrInvalidUsername", tt.raw, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Username(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Username(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        string
		expectError bool
	}{
		{
			name: "plain message unchanged",
			raw:  "hello there",
			want: "hello there",
		},
		{
			name: "max length accepted",
			raw:  strings.Repeat("m", 200),
			want: strings.Repeat("m", 200),
		},
		{
			name:        "over max length rejected",
			raw:         strings.Repeat("m", 201),
			expectError: true,
		},
		{
			name:        "empty rejected",
			raw:         "",
			expectError: true,
		},
		{
			name: "punctuation stripped",
			raw:  "hi, you!",
			want: "hi you",
		},
		{
			name:        "punctuation only becomes empty",
			raw:         "?!?",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Message(tt.raw)

			if tt.expectError {
				if !errors.Is(err, ErrInvalidMessage) {
					t.Fatalf("Message(%q) error = %v, want ErrInvalidMessage", tt.raw, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Message(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Message(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
