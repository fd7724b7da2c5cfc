package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Color is a validated display color token: either a #RRGGBB hex value or a palette name.
type Color string

var hexColorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

var paletteColors = map[string]string{
	"primary": "#7c3aed",
	"green":   "#22c55e",
	"blue":    "#3b82f6",
	"purple":  "#a855f7",
	"orange":  "#f97316",
	"pink":    "#ec4899",
	"red":     "#ef4444",
	"yellow":  "#eab308",
}

// ParseColor validates and normalizes s. An empty string yields fallback.
func ParseColor(s string, fallback Color) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback, nil
	}
	if _, ok := paletteColors[s]; ok {
		return Color(s), nil
	}
	if hexColorPattern.MatchString(s) {
		return Color(s), nil
	}
	return "", fmt.Errorf("invalid color %q (expected #RRGGBB or a palette name)", s)
}

// Hex resolves the token to a #RRGGBB value.
func (c Color) Hex() string {
	if hex, ok := paletteColors[string(c)]; ok {
		return hex
	}
	return string(c)
}

// Valid reports whether c is a palette name or a lowercase hex value.
func (c Color) Valid() bool {
	_, err := ParseColor(string(c), "")
	return err == nil && c != ""
}
