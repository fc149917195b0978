package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a chosen garment color: hex plus the name shown to the customer.
type Color struct {
	Hex  string
	Name string
}

// CustomColorName labels hex values picked outside the palette.
const CustomColorName = "Personalizado"

// Palette maps the named colors offered by the configurator, in display order.
var Palette = []Color{
	{Hex: "#ffffff", Name: "Blanco"},
	{Hex: "#111111", Name: "Negro"},
	{Hex: "#ff3e3e", Name: "Rojo"},
	{Hex: "#f4d35e", Name: "Amarillo"},
	{Hex: "#1d3557", Name: "Azul"},
}

// ColorByName looks a palette entry up by its display name.
func ColorByName(name string) (Color, bool) {
	for _, c := range Palette {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Color{}, false
}

// ResolveColor normalises hex and names it from the palette when possible.
func ResolveColor(hex string) (Color, error) {
	rgba, err := ParseHex(hex)
	if err != nil {
		return Color{}, err
	}
	norm := FormatHex(rgba)
	for _, c := range Palette {
		if c.Hex == norm {
			return c, nil
		}
	}
	return Color{Hex: norm, Name: CustomColorName}, nil
}

// ParseHex parses #rgb or #rrggbb (the leading # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func FormatHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
