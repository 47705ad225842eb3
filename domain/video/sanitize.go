package video

import (
	"strings"
	"unicode"
)

// UntitledName replaces titles that sanitize to nothing usable
const UntitledName = "untitled"

// SanitizeFilename maps an arbitrary title to a filesystem-safe token.
// Letters, digits, '_', '-', '.' and ' ' pass through; every other rune becomes '_'.
func SanitizeFilename(title string) string {
	if strings.TrimSpace(title) == "" {
		return UntitledName
	}

	var b strings.Builder
	for _, r := range title {
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '-', '.', ' ':
		return true
	default:
		return false
	}
}
