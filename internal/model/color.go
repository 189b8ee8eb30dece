package model

import (
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultFolderColor is used for folders without a valid stored color.
const DefaultFolderColor = "#444444"

// NormalizeColor returns c as lowercase #rrggbb, or fallback when c is not a
// #rgb or #rrggbb hex color.
func NormalizeColor(c, fallback string) string {
	c = strings.TrimSpace(c)
	if !isHexColor(c) {
		return fallback
	}
	parsed, err := colorful.Hex(strings.ToLower(c))
	if err != nil {
		return fallback
	}
	return parsed.Hex()
}

// ValidColor reports whether c is an accepted hex color.
func ValidColor(c string) bool {
	return isHexColor(strings.TrimSpace(c))
}

// RandomPastelColor picks a light color for a new folder.
func RandomPastelColor(rng *rand.Rand) string {
	var hue float64
	if rng != nil {
		hue = rng.Float64() * 360
	} else {
		hue = rand.Float64() * 360
	}
	return colorful.Hsl(hue, 0.6, 0.85).Clamped().Hex()
}

// ContrastColor returns black or white, whichever reads better on bg.
func ContrastColor(bg string) string {
	c, err := colorful.Hex(NormalizeColor(bg, DefaultFolderColor))
	if err != nil {
		return "#ffffff"
	}
	r, g, b := c.RGB255()
	luma := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
	if luma < 140 {
		return "#ffffff"
	}
	return "#000000"
}

func isHexColor(c string) bool {
	if len(c) != 4 && len(c) != 7 {
		return false
	}
	if c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
