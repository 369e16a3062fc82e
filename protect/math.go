package protect

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/revise"
	"golang.org/x/text/unicode/norm"
)

var (
	fracPattern    = regexp.MustCompile(`\\[dt]?frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtPattern    = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	textPattern    = regexp.MustCompile(`\\(?:text|textrm|mathrm|mathbf|mathit|mathsf|mathcal|operatorname)\{([^{}]*)\}`)
	spacingPattern = regexp.MustCompile(`\\[,;:! ]|\\\\|~`)
	commandPattern = regexp.MustCompile(`\\([A-Za-z]+)`)
)

// symbols maps LaTeX commands to the characters a word processor shows for them.
var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι",
	"kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π",
	"rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ", "phi": "φ",
	"varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"times": "×", "cdot": "·", "div": "÷", "pm": "±", "mp": "∓",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "sim": "∼", "equiv": "≡", "propto": "∝",
	"infty": "∞", "sum": "∑", "prod": "∏", "int": "∫", "partial": "∂",
	"nabla": "∇", "in": "∈", "notin": "∉", "subset": "⊂", "cup": "∪",
	"cap": "∩", "forall": "∀", "exists": "∃", "to": "→", "rightarrow": "→",
	"leftarrow": "←", "Rightarrow": "⇒", "ldots": "…", "cdots": "⋯",
	"degree": "°", "circ": "∘",
	"left": "", "right": "", "displaystyle": "", "quad": " ", "qquad": " ",
}

// Simplify renders a LaTeX math span as the plain text a word processor would show.
func Simplify(latex string) string {
	s := strings.TrimSpace(latex)
	switch {
	case strings.HasPrefix(s, "$$") && strings.HasSuffix(s, "$$") && len(s) >= 4:
		s = s[2 : len(s)-2]
	case strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$") && len(s) >= 2:
		s = s[1 : len(s)-1]
	}

	s = spacingPattern.ReplaceAllString(s, " ")
	for {
		next := textPattern.ReplaceAllString(s, "$1")
		next = sqrtPattern.ReplaceAllString(next, "√$1")
		next = fracPattern.ReplaceAllString(next, "$1/$2")
		if next == s {
			break
		}
		s = next
	}
	s = commandPattern.ReplaceAllStringFunc(s, func(m string) string {
		if sym, ok := symbols[m[1:]]; ok {
			return sym
		}
		return m[1:]
	})
	s = strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '^', '_':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// PlainKey returns a comparison key for s: NFKC-normalised with all whitespace removed.
// Superscript digits and compatibility forms fold onto their plain equivalents.
func PlainKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(s))
}

// Flatten restores placeholders in text, rendering math spans as their plain
// text. It reports whether any math span was present.
func Flatten(text string, spans []revise.ProtectedSpan) (string, bool) {
	if len(spans) == 0 {
		return text, false
	}
	r := newRestorer(spans)
	plain := make(map[string]string)
	for _, s := range spans {
		if s.Kind == revise.Math {
			plain[s.Placeholder] = s.Plain
		}
	}
	found := false
	out := r.pattern.ReplaceAllStringFunc(text, func(placeholder string) string {
		if p, ok := plain[placeholder]; ok {
			found = true
			return p
		}
		return r.lookup(placeholder)
	})
	return out, found
}
