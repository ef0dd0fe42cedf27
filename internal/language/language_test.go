package language

import (
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"xx", "xx"},
		// 3-letter codes convert, including bibliographic variants
		{"eng", "en"},
		{"fre", "fr"},
		{"ger", "de"},
		// words
		{"Japanese", "ja"},
		{" mandarin ", "zh"},
		// unknown
		{"klingon", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		code  string
		ok    bool
	}{
		{"", "", true},
		{"  ", "", true},
		{"English", "en", true},
		{"ukr", "uk", true},
		{"not-a-language", "", false},
	}
	for _, tt := range tests {
		code, ok := Normalize(tt.input)
		if code != tt.code || ok != tt.ok {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.input, code, ok, tt.code, tt.ok)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"":    "auto-detect",
		"en":  "English",
		"spa": "Spanish",
		"xx":  "XX",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}
