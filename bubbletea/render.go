package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
	"github.com/fwojciec/revise/merge"
)

// renderConfig holds all rendering parameters for renderConflict.
type renderConfig struct {
	base      string
	conflict  revise.Conflict
	styles    revise.Styles
	renderer  *lipgloss.Renderer
	display   annotate.Display
	tokenizer revise.Tokenizer
	language  string
	differ    revise.WordDiffer
	width     int

	explanation string
	explaining  bool
}

// Choice markers.
const (
	markChosen = "●"
	markOpen   = "○"
)

// renderConflict renders the context, alternatives and explanation of one
// conflict for the viewport.
func renderConflict(cfg renderConfig) string {
	c := cfg.conflict
	contextStyle := styleFromColorPair(cfg.styles.Context, cfg.renderer)
	originalStyle := styleFromColorPair(cfg.styles.Original, cfg.renderer)
	headerStyle := styleFromColorPair(cfg.styles.ConflictHeader, cfg.renderer).Bold(true)

	var sb strings.Builder

	before, original, after := cfg.display.Window(cfg.base, c.Start, c.End)
	sb.WriteString(headerStyle.Render("Context"))
	sb.WriteString("\n")
	sb.WriteString(renderTokens(cfg.highlight(before), cfg.styles.Context, cfg.renderer))
	if original == "" {
		sb.WriteString(originalStyle.Render(annotate.InsertionPoint))
	} else {
		sb.WriteString(originalStyle.Render(ExpandTabs(original, 0)))
	}
	sb.WriteString(renderTokens(cfg.highlight(after), cfg.styles.Context, cfg.renderer))
	sb.WriteString("\n\n")

	sb.WriteString(headerStyle.Render("Alternatives"))
	sb.WriteString("\n")
	choice := merge.Choice(c)
	sb.WriteString(renderAlternative(cfg, 0, "keep original", choice == 0))
	sb.WriteString("\n")
	if original != "" {
		sb.WriteString("     ")
		sb.WriteString(contextStyle.Render(ExpandTabs(original, 5)))
		sb.WriteString("\n")
	}
	for i, alt := range c.Alternatives() {
		label := fmt.Sprintf("%s (%s)", alt.Reviewer, alt.Kind())
		sb.WriteString(renderAlternative(cfg, i+1, label, choice == i+1))
		sb.WriteString("\n")
		for _, ch := range alt.Changes {
			sb.WriteString("     ")
			sb.WriteString(renderEdit(cfg, ch))
			sb.WriteString("\n")
		}
	}

	switch {
	case cfg.explaining:
		sb.WriteString("\n")
		sb.WriteString(contextStyle.Render("Explaining…"))
		sb.WriteString("\n")
	case cfg.explanation != "":
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Explanation"))
		sb.WriteString("\n")
		sb.WriteString(cfg.explanation)
		sb.WriteString("\n")
	}

	content := sb.String()
	if cfg.width > 0 {
		content = newStyle(cfg.renderer).Width(cfg.width).Render(content)
	}
	return content
}

// renderAlternative renders the numbered line for one choice.
func renderAlternative(cfg renderConfig, n int, label string, chosen bool) string {
	mark := markOpen
	style := styleFromColorPair(cfg.styles.Alternative, cfg.renderer)
	if chosen {
		mark = markChosen
		style = styleFromColorPair(cfg.styles.Selected, cfg.renderer)
	}
	return fmt.Sprintf("  %s %s", mark, style.Render(fmt.Sprintf("%d) %s", n, label)))
}

// renderEdit shows what an alternative removes and adds.
func renderEdit(cfg renderConfig, ch revise.Change) string {
	inserted := styleFromColorPair(cfg.styles.Inserted, cfg.renderer)
	deleted := styleFromColorPair(cfg.styles.Deleted, cfg.renderer).Strikethrough(true)
	switch ch.Kind {
	case revise.Insert:
		return inserted.Render(ExpandTabs(ch.NewText, 5))
	case revise.Delete:
		return deleted.Render(ExpandTabs(ch.OldText, 5))
	default:
		if cfg.differ == nil {
			return deleted.Render(ExpandTabs(ch.OldText, 5)) + " → " + inserted.Render(ExpandTabs(ch.NewText, 5))
		}
		oldSegs, newSegs := cfg.differ.Diff(ch.OldText, ch.NewText)
		same := styleFromColorPair(cfg.styles.Context, cfg.renderer)
		return renderSegments(oldSegs, deleted, same) + " → " + renderSegments(newSegs, inserted, same)
	}
}

// renderSegments renders changed segments with changed and the rest with same.
func renderSegments(segs []revise.Segment, changed, same lipgloss.Style) string {
	var sb strings.Builder
	for _, seg := range segs {
		text := ExpandTabs(seg.Text, 5)
		if seg.Changed {
			sb.WriteString(changed.Render(text))
		} else {
			sb.WriteString(same.Render(text))
		}
	}
	return sb.String()
}

// highlight tokenizes manuscript text, falling back to a single plain token.
func (cfg renderConfig) highlight(s string) []revise.Token {
	if s == "" {
		return nil
	}
	if cfg.tokenizer != nil && cfg.language != "" {
		if tokens := cfg.tokenizer.Tokenize(cfg.language, s); tokens != nil {
			return expandTokenTabs(tokens)
		}
	}
	return expandTokenTabs([]revise.Token{{Text: s}})
}

// renderTokens renders tokens with their highlight foreground over the
// given colors.
func renderTokens(tokens []revise.Token, colors revise.ColorPair, renderer *lipgloss.Renderer) string {
	var sb strings.Builder
	for _, tok := range tokens {
		style := newStyle(renderer)
		if colors.Background != "" {
			style = style.Background(lipgloss.Color(colors.Background))
		}
		if tok.Style.Foreground != "" {
			style = style.Foreground(lipgloss.Color(tok.Style.Foreground))
		} else if colors.Foreground != "" {
			style = style.Foreground(lipgloss.Color(colors.Foreground))
		}
		if tok.Style.Bold {
			style = style.Bold(true)
		}
		if tok.Style.Italic {
			style = style.Italic(true)
		}
		sb.WriteString(style.Render(tok.Text))
	}
	return sb.String()
}

// styleFromColorPair creates a lipgloss style from a ColorPair.
// If renderer is nil, the default lipgloss renderer is used.
func styleFromColorPair(cp revise.ColorPair, renderer *lipgloss.Renderer) lipgloss.Style {
	style := newStyle(renderer)
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}

func newStyle(renderer *lipgloss.Renderer) lipgloss.Style {
	if renderer != nil {
		return renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}
