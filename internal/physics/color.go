package physics

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a display attribute only; physics never reads it.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	White  = Color{255, 255, 255}
	Black  = Color{0, 0, 0}
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	Blue   = Color{0, 0, 255}
	Yellow = Color{255, 215, 0}
	Orange = Color{255, 140, 0}
	Purple = Color{128, 0, 128}
	Maroon = Color{128, 0, 0}
	Brown  = Color{139, 69, 19}
)

var namedColors = map[string]Color{
	"white":  White,
	"black":  Black,
	"red":    Red,
	"green":  Green,
	"blue":   Blue,
	"yellow": Yellow,
	"orange": Orange,
	"purple": Purple,
	"maroon": Maroon,
	"brown":  Brown,
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts a palette name or a #rrggbb literal.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		n, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
	}
	return Color{}, fmt.Errorf("unknown color: %s", s)
}
