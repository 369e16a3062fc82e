// Package lipgloss provides theme implementations using the Lipgloss styling library.
package lipgloss

import (
	"fmt"

	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var _ revise.Theme = (*Theme)(nil)

// Theme implements revise.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles  revise.Styles
	palette revise.Palette
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() revise.Styles {
	return t.styles
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() revise.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the theme registered under name ("dark" or "light").
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// Style converts a color pair into a lipgloss style. Empty colors leave the
// terminal default in place.
func Style(pair revise.ColorPair) lg.Style {
	s := lg.NewStyle()
	if pair.Foreground != "" {
		s = s.Foreground(lg.Color(pair.Foreground))
	}
	if pair.Background != "" {
		s = s.Background(lg.Color(pair.Background))
	}
	return s
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: revise.Styles{
			Inserted: revise.ColorPair{
				Foreground: "#a6e3a1", // Green
				Background: "#004000",
			},
			Deleted: revise.ColorPair{
				Foreground: "#f38ba8", // Red
				Background: "#3f0001",
			},
			Context: revise.ColorPair{
				Foreground: "#6c7086", // Muted gray
			},
			Original: revise.ColorPair{
				Foreground: "#f9e2af", // Yellow
				Background: "#313244",
			},
			ConflictHeader: revise.ColorPair{
				Foreground: "#89b4fa", // Blue
			},
			Alternative: revise.ColorPair{
				Foreground: "#cdd6f4",
			},
			Selected: revise.ColorPair{
				Foreground: "#1e1e2e", // Dark text on bright background
				Background: "#a6e3a1",
			},
			Status: revise.ColorPair{
				Foreground: "#a6adc8",
				Background: "#313244",
			},
		},
		palette: revise.Palette{
			// Catppuccin Mocha
			Background: "#1e1e2e",
			Foreground: "#cdd6f4",
			Accent:     "#89b4fa",
			Muted:      "#6c7086",

			Heading:  "#cba6f7",
			Emphasis: "#fab387",
			Code:     "#89dceb",
			Link:     "#74c7ec",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: revise.Styles{
			Inserted: revise.ColorPair{
				Foreground: "#40a02b",
				Background: "#d4f4d4",
			},
			Deleted: revise.ColorPair{
				Foreground: "#d20f39",
				Background: "#f4d4d4",
			},
			Context: revise.ColorPair{
				Foreground: "#9ca0b0",
			},
			Original: revise.ColorPair{
				Foreground: "#df8e1d",
				Background: "#e6e9ef",
			},
			ConflictHeader: revise.ColorPair{
				Foreground: "#1e66f5",
			},
			Alternative: revise.ColorPair{
				Foreground: "#4c4f69",
			},
			Selected: revise.ColorPair{
				Foreground: "#ffffff", // White text on dark background
				Background: "#40a02b",
			},
			Status: revise.ColorPair{
				Foreground: "#6c6f85",
				Background: "#e6e9ef",
			},
		},
		palette: revise.Palette{
			// Catppuccin Latte
			Background: "#eff1f5",
			Foreground: "#4c4f69",
			Accent:     "#1e66f5",
			Muted:      "#9ca0b0",

			Heading:  "#8839ef",
			Emphasis: "#fe640b",
			Code:     "#04a5e5",
			Link:     "#209fb5",
		},
	}
}
