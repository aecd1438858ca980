package settings

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownColor is returned when the configured color is not in Palette.
var ErrUnknownColor = errors.New("unknown color")

// Palette maps theme color names to the hex value pages are painted with.
var Palette = map[string]string{
	"red":      "#e74c3c",
	"green":    "#16a085",
	"blue":     "#89CFF0",
	"blue2":    "#30336b",
	"pink":     "#f4c2c2",
	"darkblue": "#130f40",
	"lime":     "#C1FF9C",
}

// ColorHex looks name up in Palette.
func ColorHex(name string) (string, error) {
	hex, ok := Palette[name]
	if !ok {
		return "", fmt.Errorf("%w %q (supported: %v)", ErrUnknownColor, name, ColorNames())
	}
	return hex, nil
}

// ColorNames returns the palette keys, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(Palette))
	for k := range Palette {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
