package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/revise"
)

var _ revise.LanguageDetector = (*Detector)(nil)

// sidecarSuffixes name files that belong to a manuscript: the conflict
// record and the merge history.
var sidecarSuffixes = []string{".conflicts.json", ".history.jsonl"}

// manuscriptLexers maps manuscript extensions chroma has no lexer for to
// the lexer that highlights their prose.
var manuscriptLexers = map[string]string{
	".qmd": "markdown",
	".rmd": "markdown",
	".mdx": "markdown",
}

// Detector names the markup a manuscript is written in, for highlighting
// its context in the resolver.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the lexer name for the manuscript at path, or ""
// when its markup is unknown. A record or history path resolves to the
// manuscript it sits next to.
func (d *Detector) DetectFromPath(path string) string {
	name := filepath.Base(path)
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
		}
	}

	if alias, ok := manuscriptLexers[strings.ToLower(filepath.Ext(name))]; ok {
		if lexer := lexers.Get(alias); lexer != nil {
			return lexer.Config().Name
		}
	}
	lexer := lexers.Match(name)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
