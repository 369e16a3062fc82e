package revise

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for every visual element of the conflict resolver.
type Styles struct {
	Inserted       ColorPair // Text added by a reviewer
	Deleted        ColorPair // Text removed by a reviewer
	Context        ColorPair // Untouched text around a conflict
	Original       ColorPair // The base slice a conflict replaces
	ConflictHeader ColorPair // "Conflict c1 (2 of 5)" banner
	Alternative    ColorPair // Numbered alternatives
	Selected       ColorPair // The alternative currently chosen
	Status         ColorPair // Footer/status line
}

// Palette defines the base colors a theme is built from.
type Palette struct {
	Background string
	Foreground string
	Accent     string
	Muted      string

	// Markdown highlighting
	Heading  string
	Emphasis string
	Code     string
	Link     string
}

// Theme provides styles for rendering conflicts.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
	Palette() Palette
}
