// Package sanitize strips control characters from caller supplied values
// before they end up in log lines (CWE-117).
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxLogged caps how many bytes of a single caller supplied value are logged
const maxLogged = 256

// UserInputString returns a zap field with line breaks and other control
// characters removed and the value truncated
func UserInputString(key string, value string) zapcore.Field {
	return zap.String(key, NoControl(value))
}

// NoControl removes control characters and truncates overlong values at a
// rune boundary
func NoControl(value string) string {
	esc := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	if len(esc) <= maxLogged {
		return esc
	}
	cut := maxLogged
	for cut > 0 && !utf8.RuneStart(esc[cut]) {
		cut--
	}
	return esc[:cut] + "..."
}
