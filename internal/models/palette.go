package models

import "strings"

// PaletteColor is a named entry of the fixed event colour palette.
type PaletteColor struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// Palette is the single bidirectional lookup between colour names and hex codes.
// The first entry is the default.
var Palette = []PaletteColor{
	{Name: "red", Label: "빨간색", Hex: "#FF6B6B"},
	{Name: "blue", Label: "파란색", Hex: "#45B7D1"},
	{Name: "green", Label: "초록색", Hex: "#4ECDC4"},
	{Name: "purple", Label: "보라색", Hex: "#845EC2"},
	{Name: "orange", Label: "주황색", Hex: "#FF9671"},
}

// DefaultColor is used whenever a colour cannot be resolved.
var DefaultColor = Palette[0]

var (
	paletteByName = map[string]PaletteColor{}
	paletteByHex  = map[string]PaletteColor{}
)

func init() {
	for _, c := range Palette {
		paletteByName[c.Name] = c
		paletteByName[c.Label] = c
		paletteByHex[strings.ToUpper(c.Hex)] = c
	}
}

// ColorHex resolves a palette name, label or hex code to its hex code.
// Unknown values map to the default colour.
func ColorHex(value string) string {
	if c, ok := LookupColor(value); ok {
		return c.Hex
	}
	return DefaultColor.Hex
}

// ColorName resolves a hex code (or name) to its palette name.
// Unknown values map to the default colour name.
func ColorName(value string) string {
	if c, ok := LookupColor(value); ok {
		return c.Name
	}
	return DefaultColor.Name
}

// LookupColor finds a palette entry by name, label or hex code.
func LookupColor(value string) (PaletteColor, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PaletteColor{}, false
	}
	if c, ok := paletteByHex[strings.ToUpper(trimmed)]; ok {
		return c, true
	}
	if c, ok := paletteByName[strings.ToLower(trimmed)]; ok {
		return c, true
	}
	c, ok := paletteByName[trimmed]
	return c, ok
}
