package service

import (
	"strings"
	"unicode"
)

// trimField strips the whitespace a browser's String.prototype.trim strips:
// Unicode spaces and line terminators plus the BOM, but not NEL (U+0085).
func trimField(s string) string {
	return strings.TrimFunc(s, isFieldSpace)
}

func isFieldSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
