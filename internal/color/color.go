package color

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var enabled bool

// Init detects whether stderr is a TTY and enables colors accordingly.
func Init() {
	enabled = term.IsTerminal(int(os.Stderr.Fd()))
}

// Enabled reports whether escape sequences are emitted.
func Enabled() bool { return enabled }

func wrap(code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func Red(s string) string    { return wrap("31", s) }
func Yellow(s string) string { return wrap("33", s) }
func Green(s string) string  { return wrap("32", s) }
func Bold(s string) string   { return wrap("1", s) }
func Dim(s string) string    { return wrap("2", s) }
func Cyan(s string) string   { return wrap("36", s) }

// Hex paints s in a 24-bit foreground color given as "#rrggbb".
// Malformed values leave s unpainted.
func Hex(hex, s string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return s
	}
	return wrap(fmt.Sprintf("38;2;%d;%d;%d", r, g, b), s)
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
