// Package telnet is the arena's line-oriented Telnet transport: IAC filtering,
// prompts, asynchronous notifications and ANSI styling.
package telnet

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI escape codes used by the arena renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Colorize wraps text with color and a trailing Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats and wraps the result with color.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes all \033[...m sequences from s.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// VisibleLen returns the number of printable runes in s, ignoring ANSI codes.
func VisibleLen(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// PadRight pads s with spaces to width printable runes. Longer strings are
// returned unchanged.
func PadRight(s string, width int) string {
	if n := VisibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
