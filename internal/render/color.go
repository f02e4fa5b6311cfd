package render

import (
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":  {0x00, 0x00, 0x00, 0xff},
	"white":  {0xff, 0xff, 0xff, 0xff},
	"red":    {0xd0, 0x1c, 0x1c, 0xff},
	"green":  {0x1a, 0x7f, 0x37, 0xff},
	"blue":   {0x1c, 0x4e, 0xd8, 0xff},
	"yellow": {0xf5, 0xc5, 0x18, 0xff},
	"orange": {0xe8, 0x7b, 0x17, 0xff},
	"purple": {0x6b, 0x21, 0xa8, 0xff},
	"pink":   {0xdb, 0x27, 0x77, 0xff},
	"brown":  {0x7c, 0x4a, 0x1e, 0xff},
	"gray":   {0x6b, 0x72, 0x80, 0xff},
	"grey":   {0x6b, 0x72, 0x80, 0xff},
	"gold":   {0xb4, 0x8a, 0x28, 0xff},
	"navy":   {0x1e, 0x29, 0x5c, 0xff},
}

// ParseColor accepts a named color or a #rgb/#rrggbb/#rrggbbaa hex value.
// Anything unparseable falls back to black, per the overlay contract.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if c, ok := parseHexColor(s); ok {
		return c
	}
	return namedColors["black"]
}

func parseHexColor(s string) (color.NRGBA, bool) {
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}
	hex := s[1:]

	expand := func(h string) string {
		var sb strings.Builder
		for _, r := range h {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String()
	}

	switch len(hex) {
	case 3:
		hex = expand(hex) + "ff"
	case 4:
		hex = expand(hex)
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, true
}
