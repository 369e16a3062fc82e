// Package bubbletea provides a terminal conflict resolver using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
	theme "github.com/fwojciec/revise/lipgloss"
	"github.com/fwojciec/revise/merge"
)

// Compile-time interface verification.
var _ revise.ConflictResolver = (*Resolver)(nil)

// ErrNothingToResolve is returned when a record has no conflicts.
var ErrNothingToResolve = errors.New("no conflicts to resolve")

// explainedMsg carries an explainer result back into the update loop.
type explainedMsg struct {
	id   string
	text string
	err  error
}

// Model is the Bubble Tea model for resolving conflicts one at a time.
type Model struct {
	ctx     context.Context
	base    string
	record  *revise.ConflictRecord
	current int

	explanations map[string]string
	explaining   map[string]bool

	// Collaborators, all optional
	store      revise.ConflictStore
	recordPath string
	clipboard  revise.Clipboard
	explainer  revise.Explainer
	tokenizer  revise.Tokenizer
	language   string
	differ     revise.WordDiffer

	// UI state
	viewport viewport.Model
	help     help.Model
	keymap   KeyMap
	styles   revise.Styles
	renderer *lipgloss.Renderer
	display  annotate.Display
	width    int
	ready    bool
	status   string
	dirty    bool
}

// Option configures a Model.
type Option func(*Model)

// WithStore enables saving the record to path with the save key.
func WithStore(store revise.ConflictStore, path string) Option {
	return func(m *Model) {
		m.store = store
		m.recordPath = path
	}
}

// WithClipboard enables copying the current conflict.
func WithClipboard(c revise.Clipboard) Option {
	return func(m *Model) {
		m.clipboard = c
	}
}

// WithExplainer enables on-demand conflict explanations.
func WithExplainer(e revise.Explainer) Option {
	return func(m *Model) {
		m.explainer = e
	}
}

// WithTheme sets the theme for the model.
func WithTheme(t revise.Theme) Option {
	return func(m *Model) {
		m.styles = t.Styles()
	}
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) {
		m.renderer = r
	}
}

// WithHighlighting highlights context text as language using tokenizer.
func WithHighlighting(tokenizer revise.Tokenizer, language string) Option {
	return func(m *Model) {
		m.tokenizer = tokenizer
		m.language = language
	}
}

// WithWordDiffer highlights the changed words within replacements.
func WithWordDiffer(d revise.WordDiffer) Option {
	return func(m *Model) {
		m.differ = d
	}
}

// WithDisplay sets the context and preview bounds.
func WithDisplay(d annotate.Display) Option {
	return func(m *Model) {
		m.display = d
	}
}

// WithContext sets the context used for explainer calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// NewModel creates a Model over a copy of record.
func NewModel(base string, record *revise.ConflictRecord, opts ...Option) Model {
	rec := &revise.ConflictRecord{}
	if record != nil {
		*rec = *record
		rec.Conflicts = slices.Clone(record.Conflicts)
	}
	m := Model{
		ctx:          context.Background(),
		base:         base,
		record:       rec,
		explanations: make(map[string]string),
		explaining:   make(map[string]bool),
		help:         help.New(),
		keymap:       DefaultKeyMap(),
		styles:       theme.DefaultTheme().Styles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if i := m.nextUnresolved(-1); i >= 0 {
		m.current = i
	}
	return m
}

// Record returns the record with the decisions made so far.
func (m Model) Record() *revise.ConflictRecord {
	return m.record
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		height := max(1, msg.Height-3) // header, status and help lines
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
		return m, nil

	case explainedMsg:
		delete(m.explaining, msg.id)
		if msg.err != nil {
			m.status = fmt.Sprintf("explain %s: %v", msg.id, msg.err)
		} else {
			m.explanations[msg.id] = msg.text
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Next):
		m.move(m.current + 1)
		return m, nil

	case key.Matches(msg, m.keymap.Prev):
		m.move(m.current - 1)
		return m, nil

	case key.Matches(msg, m.keymap.NextUnresolved):
		if i := m.nextUnresolved(m.current); i >= 0 {
			m.move(i)
		} else {
			m.status = "all conflicts resolved"
		}
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.viewport.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.viewport.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keymap.HalfPageUp):
		m.viewport.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keymap.HalfPageDown):
		m.viewport.HalfPageDown()
		return m, nil

	case key.Matches(msg, m.keymap.Pick):
		m.pick(int(msg.Runes[0] - '0'))
		return m, nil

	case key.Matches(msg, m.keymap.Unresolve):
		if c, ok := m.conflict(); ok {
			_ = merge.Unresolve(m.record, c.ID)
			m.status = c.ID + " cleared"
			m.dirty = true
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Copy):
		m.copy()
		return m, nil

	case key.Matches(msg, m.keymap.Save):
		m.save()
		return m, nil

	case key.Matches(msg, m.keymap.Explain):
		cmd := m.explain()
		return m, cmd
	}

	return m, nil
}

func (m *Model) pick(choice int) {
	c, ok := m.conflict()
	if !ok {
		return
	}
	if err := merge.Resolve(m.record, c.ID, choice); err != nil {
		m.status = fmt.Sprintf("%s has no alternative %d", c.ID, choice)
		return
	}
	resolved, _ := m.conflict()
	m.status = fmt.Sprintf("%s → %s", c.ID, *resolved.Resolved)
	m.dirty = true
	m.refresh()
}

func (m *Model) copy() {
	c, ok := m.conflict()
	if !ok {
		return
	}
	if m.clipboard == nil {
		m.status = "no clipboard available"
		return
	}
	if err := m.clipboard.Copy(m.display.Format(c, m.base)); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = c.ID + " copied"
}

func (m *Model) save() {
	if m.store == nil || m.recordPath == "" {
		m.status = "no record file to save to"
		return
	}
	if err := m.store.Save(m.recordPath, m.record); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.dirty = false
	m.status = fmt.Sprintf("saved %d decisions", len(m.record.Resolved()))
}

// explain starts an explainer call for the current conflict. The result
// arrives as an explainedMsg.
func (m *Model) explain() tea.Cmd {
	c, ok := m.conflict()
	if !ok {
		return nil
	}
	if m.explainer == nil {
		m.status = "explanations are not configured"
		return nil
	}
	if m.explaining[c.ID] || m.explanations[c.ID] != "" {
		return nil
	}
	m.explaining[c.ID] = true
	m.refresh()
	ctx, explainer, base := m.ctx, m.explainer, m.base
	return func() tea.Msg {
		text, err := explainer.Explain(ctx, c, base)
		return explainedMsg{id: c.ID, text: text, err: err}
	}
}

func (m *Model) move(i int) {
	if i < 0 || i >= len(m.record.Conflicts) || i == m.current {
		return
	}
	m.current = i
	m.status = ""
	m.refresh()
	m.viewport.GotoTop()
}

// nextUnresolved returns the index of the next undecided conflict after
// from, wrapping around. Returns -1 if every conflict is decided.
func (m Model) nextUnresolved(from int) int {
	n := len(m.record.Conflicts)
	for i := 1; i <= n; i++ {
		idx := (from + i + n) % n
		if !m.record.Conflicts[idx].IsResolved() {
			return idx
		}
	}
	return -1
}

func (m Model) conflict() (revise.Conflict, bool) {
	if m.current < 0 || m.current >= len(m.record.Conflicts) {
		return revise.Conflict{}, false
	}
	return m.record.Conflicts[m.current], true
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	c, ok := m.conflict()
	if !ok {
		m.viewport.SetContent("No conflicts to resolve.")
		return
	}
	m.viewport.SetContent(renderConflict(renderConfig{
		base:        m.base,
		conflict:    c,
		styles:      m.styles,
		renderer:    m.renderer,
		display:     m.display,
		tokenizer:   m.tokenizer,
		language:    m.language,
		differ:      m.differ,
		width:       m.width,
		explanation: m.explanations[c.ID],
		explaining:  m.explaining[c.ID],
	}))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusBarView())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keymap))
	return sb.String()
}

func (m Model) headerView() string {
	style := styleFromColorPair(m.styles.ConflictHeader, m.renderer).Bold(true)
	c, ok := m.conflict()
	if !ok {
		return style.Render("Nothing to resolve")
	}
	header := fmt.Sprintf("Conflict %s (%d of %d)", c.ID, m.current+1, len(m.record.Conflicts))
	if c.IsResolved() {
		header += " · resolved: " + *c.Resolved
	}
	return style.Render(header)
}

func (m Model) statusBarView() string {
	barStyle := styleFromColorPair(m.styles.Status, m.renderer)
	total := len(m.record.Conflicts)
	resolved := len(m.record.Resolved())

	var indicators []string
	for i, c := range m.record.Conflicts {
		mark := markOpen
		if c.IsResolved() {
			mark = markChosen
		}
		if i == m.current {
			mark = "[" + mark + "]"
		}
		indicators = append(indicators, mark)
	}

	content := fmt.Sprintf("%d/%d resolved │ %s", resolved, total, strings.Join(indicators, " "))
	if m.dirty && m.store != nil {
		content += " │ unsaved"
	}
	if m.status != "" {
		content += " │ " + m.status
	}
	if lipgloss.Width(content) < m.width {
		content += strings.Repeat(" ", m.width-lipgloss.Width(content))
	}
	return barStyle.Render(content)
}

// Resolver implements revise.ConflictResolver using a Bubble Tea TUI.
type Resolver struct {
	opts      []Option
	programOp []tea.ProgramOption
}

// NewResolver creates a new Resolver. The options configure every Model it opens.
func NewResolver(opts ...Option) *Resolver {
	return &Resolver{opts: opts}
}

// WithProgramOptions returns a copy of r whose program uses the given options
// instead of the alternate screen.
func (r *Resolver) WithProgramOptions(opts ...tea.ProgramOption) *Resolver {
	return &Resolver{opts: r.opts, programOp: opts}
}

// Resolve shows the conflicts of record and blocks until the user exits.
// It returns the record with the decisions made.
func (r *Resolver) Resolve(ctx context.Context, base string, record *revise.ConflictRecord) (*revise.ConflictRecord, error) {
	if record == nil || len(record.Conflicts) == 0 {
		return nil, ErrNothingToResolve
	}
	opts := append(slices.Clone(r.opts), WithContext(ctx))
	m := NewModel(base, record, opts...)

	programOpts := r.programOp
	if programOpts == nil {
		programOpts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	programOpts = append(slices.Clone(programOpts), tea.WithContext(ctx))

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Record(), nil
}
