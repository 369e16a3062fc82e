package revise

// Token represents a highlighted segment of manuscript text.
type Token struct {
	Text  string // The text content of this token
	Style Style  // Visual style to apply (colors, bold, etc.)
}

// Style represents the visual styling for a token.
type Style struct {
	Foreground string // Hex color code (e.g., "#ff0000") or empty for default
	Bold       bool   // Whether the text should be bold
	Italic     bool
}

// Tokenizer extracts highlight tokens from manuscript source.
type Tokenizer interface {
	// Tokenize splits source into highlighted tokens for the given language.
	// Returns nil if the language is not supported.
	Tokenize(language, source string) []Token
}

// LanguageDetector determines the markup language from a file path.
type LanguageDetector interface {
	// DetectFromPath returns the language name for the given path,
	// or an empty string if the language cannot be determined.
	DetectFromPath(path string) string
}

// Segment is a stretch of text within an edit, marked when it differs from
// the other side.
type Segment struct {
	Text    string
	Changed bool
}

// WordDiffer finds the words a replacement actually changes.
type WordDiffer interface {
	// Diff returns segments for both sides. Concatenating each side's
	// segments gives back the input.
	Diff(old, new string) (oldSegs, newSegs []Segment)
}
