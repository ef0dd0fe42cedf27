package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// SanitizeClipBase keeps the original file stem readable while removing
// characters that would break manifest lines or paths. Unicode letters are
// preserved (NFC), path separators and the manifest delimiter become dashes.
func SanitizeClipBase(stem string) string {
	stem = norm.NFC.String(strings.TrimSpace(stem))
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r == '/' || r == '\\' || r == '|' || r == ':':
			b.WriteByte('-')
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-_.")
	if out == "" {
		return "clip"
	}
	return out
}

// CleanTranscript prepares recognizer output for a single manifest line:
// NFC normalization, the manifest delimiter replaced, line breaks and runs of
// whitespace collapsed to one space.
func CleanTranscript(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "|", " ")
	return strings.Join(strings.Fields(text), " ")
}
