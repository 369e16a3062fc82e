package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/revise"
)

// StyleFromPalette returns a function that maps chroma token types to
// manuscript styles based on the provided palette colors.
func StyleFromPalette(p revise.Palette) StyleFunc {
	return func(tt chromalib.TokenType) revise.Style {
		switch tt {
		case chromalib.GenericHeading, chromalib.GenericSubheading:
			return revise.Style{Foreground: p.Heading, Bold: true}

		case chromalib.GenericEmph:
			return revise.Style{Foreground: p.Emphasis, Italic: true}

		case chromalib.GenericStrong:
			return revise.Style{Foreground: p.Emphasis, Bold: true}

		// Inline code, fenced blocks and math
		case chromalib.LiteralStringBacktick, chromalib.LiteralString,
			chromalib.NameBuiltin, chromalib.Keyword:
			return revise.Style{Foreground: p.Code}

		// Link text and targets
		case chromalib.NameTag, chromalib.NameAttribute, chromalib.NameVariable:
			return revise.Style{Foreground: p.Link}

		case chromalib.Comment, chromalib.CommentSingle, chromalib.CommentMultiline:
			return revise.Style{Foreground: p.Muted}

		default:
			return revise.Style{}
		}
	}
}
