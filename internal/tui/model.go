// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive session screen: materials on one tab and
// the three synchronized result views on the others.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/internal/feedback"
	"github.com/pdiddy/literature-review/internal/session"
	"github.com/pdiddy/literature-review/internal/view"
)

// Tab identifies one screen of the session.
type Tab int

const (
	TabMaterials Tab = iota
	TabProse
	TabStructured
	TabTable
	tabCount
)

var tabNames = [...]string{"Materials", "Prose", "Structured", "Table"}

func (t Tab) String() string { return tabNames[t] }

// copyTarget names the view a copy came from; feedback is keyed on it.
func (t Tab) copyTarget() string { return strings.ToLower(t.String()) }

// analysisDoneMsg carries an engine completion back into the update loop.
type analysisDoneMsg struct {
	seq uint64
	env engine.Envelope
	err error
}

// copyStateMsg tells the model that the copied indicator changed.
type copyStateMsg struct{ target string }

// Options configures a Model.
type Options struct {
	Engine    engine.Engine
	ExportDir string
	Timeout   time.Duration
	Logger    *zap.Logger

	// FeedbackDelay is how long the copied indicator stays up.
	FeedbackDelay time.Duration

	// Timer tracks the copied indicator. Defaults to a fresh Timer using
	// FeedbackDelay.
	Timer *feedback.Timer

	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	Clipboard func(string) error

	// Now defaults to time.Now and names export files.
	Now func() time.Time
}

// Model is the bubbletea model for a review session.
type Model struct {
	ctrl  *session.Controller
	eng   engine.Engine
	timer *feedback.Timer
	opts  Options

	keys     keyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model

	tab      Tab
	cursor   int
	entering bool
	status   string
	width    int
	height   int
}

// New returns a model driving ctrl.
func New(ctrl *session.Controller, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timer == nil {
		opts.Timer = feedback.New(feedback.WithDelay(opts.FeedbackDelay))
	}

	ti := textinput.New()
	ti.Prompt = "URL: "
	ti.Placeholder = "https://doi.org/10.1000/xyz"
	ti.CharLimit = 2048

	m := Model{
		ctrl:     ctrl,
		eng:      opts.Engine,
		timer:    opts.Timer,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(80, 20),
	}
	m.sync()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Tab returns the active tab.
func (m Model) Tab() Tab { return m.tab }

// Status returns the last status line message.
func (m Model) Status() string { return m.status }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)

	case analysisDoneMsg:
		if err := m.ctrl.CompleteSubmit(msg.seq, msg.env, msg.err); err == nil {
			m.status = "analysis complete"
			m.viewport.GotoTop()
		}

	case copyStateMsg:
		// Render picks up the new indicator state.

	case tea.KeyMsg:
		if m.entering {
			cmd = m.updateInput(msg)
		} else {
			cmd = m.updateKeys(msg)
		}

	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	m.sync()
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.ctrl.SetURLInput(m.input.Value())
		if rec, ok := m.ctrl.SubmitURL(); ok {
			m.status = "added " + rec.DisplayName
		}
		m.input.SetValue("")
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.entering = false
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetURLInput(m.input.Value())
	return cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissError()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		m.input.SetValue("")
		m.cursor = 0
		m.status = "session reset"
	case key.Matches(msg, m.keys.Copy):
		m.copyView()
	case key.Matches(msg, m.keys.Export):
		m.export()
	case m.tab == TabMaterials:
		return m.updateMaterials(msg)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateMaterials(msg tea.KeyMsg) tea.Cmd {
	records := m.ctrl.State().Records
	switch {
	case key.Matches(msg, m.keys.URL):
		m.entering = true
		return m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if m.cursor < len(records) {
			rec := records[m.cursor]
			if m.ctrl.Remove(rec.ID) {
				m.status = "removed " + rec.DisplayName
			}
		}
	}
	return nil
}

// submit starts an analysis. While one is in flight the key does nothing.
func (m *Model) submit() tea.Cmd {
	if m.eng == nil {
		m.status = "no analysis engine configured"
		return nil
	}
	sub, err := m.ctrl.BeginSubmit()
	if err != nil {
		return nil
	}
	m.status = "analyzing…"
	eng, timeout := m.eng, m.opts.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		env, err := eng.Analyze(ctx, sub.Request)
		return analysisDoneMsg{seq: sub.Seq, env: env, err: err}
	}
}

// copyView writes the active result view to the clipboard.
func (m *Model) copyView() {
	r := m.ctrl.Result()
	if r == nil || m.tab == TabMaterials {
		return
	}
	var text string
	switch m.tab {
	case TabProse:
		text = view.Prose(r)
	case TabStructured:
		text = view.Structured(r)
	case TabTable:
		text = tsv(view.Table(r))
	}
	if err := m.opts.Clipboard(text); err != nil {
		m.opts.Logger.Warn("clipboard write failed", zap.Error(err))
		m.status = "copy failed: " + err.Error()
		return
	}
	m.timer.Copied(m.tab.copyTarget())
	m.status = ""
}

// export writes every available artifact to the export directory.
func (m *Model) export() {
	r := m.ctrl.Result()
	if r == nil {
		return
	}
	now := m.opts.Now()
	var written []string
	var errs []error
	for _, build := range []func() (view.Artifact, bool){
		func() (view.Artifact, bool) { return view.ExportProse(r, now) },
		func() (view.Artifact, bool) { return view.ExportStructured(r, now) },
	} {
		a, ok := build()
		if !ok {
			continue
		}
		path, err := view.WriteArtifact(m.opts.ExportDir, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	if err := errors.Join(errs...); err != nil {
		m.opts.Logger.Warn("export failed", zap.Error(err))
		m.status = "export failed: " + err.Error()
		return
	}
	if len(written) > 0 {
		m.status = "exported " + strings.Join(written, ", ")
	}
}

// sync re-derives every result view from the controller's current result.
func (m *Model) sync() {
	state := m.ctrl.State()
	if m.cursor >= len(state.Records) {
		m.cursor = max(len(state.Records)-1, 0)
	}
	r := state.Result
	switch m.tab {
	case TabProse:
		m.viewport.SetContent(view.Prose(r))
	case TabStructured:
		m.viewport.SetContent(view.Structured(r))
	case TabTable:
		m.viewport.SetContent(view.RenderTable(r, m.width))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	state := m.ctrl.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Literature Review"))
	if state.Busy {
		b.WriteString("  " + busyStyle.Render("analyzing…"))
	}
	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n")

	if state.Result != nil {
		b.WriteString(dimStyle.Render(view.Summary(state.Result)))
		if badges := view.RenderBadges(state.Result); badges != "" {
			b.WriteString("  " + badges)
		}
		b.WriteString("\n")
	}
	if state.Err != nil {
		b.WriteString(errorStyle.Render(state.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.tab == TabMaterials {
		b.WriteString(m.materialsView(state))
	} else if state.Result == nil {
		b.WriteString(dimStyle.Render("No results yet. Add materials and press s to analyze."))
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.shortHelp()))
	return b.String()
}

func (m Model) tabBar() string {
	tabs := make([]string, 0, tabCount)
	for t := TabMaterials; t < tabCount; t++ {
		label := t.String()
		if t != TabMaterials && m.timer.IsCopied(t.copyTarget()) {
			label += " " + copiedStyle.Render("✓ copied")
		}
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) materialsView(state session.State) string {
	var b strings.Builder
	if len(state.Records) == 0 {
		b.WriteString(dimStyle.Render("No materials. Press u to add a URL or pass files on the command line."))
		b.WriteString("\n")
	}
	for i, rec := range state.Records {
		line := fmt.Sprintf("%s %s", categoryStyle.Render(fmt.Sprintf("[%s]", rec.Category.Label())), rec.DisplayName)
		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.entering {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) shortHelp() []key.Binding {
	if m.entering {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	bindings := []key.Binding{m.keys.NextTab}
	if m.tab == TabMaterials {
		bindings = append(bindings, m.keys.URL, m.keys.Remove)
	} else {
		bindings = append(bindings, m.keys.Copy)
	}
	bindings = append(bindings, m.keys.Submit, m.keys.Export, m.keys.Reset, m.keys.Quit)
	return bindings
}

func tsv(rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(view.Columns, "\t"))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n")
}

// Run starts the session screen and blocks until the user quits.
func Run(ctrl *session.Controller, opts Options) error {
	var p *tea.Program
	// Copied runs inside Update, where Send would block the event loop, so
	// only expiry, which fires on the timer goroutine, is forwarded.
	timer := feedback.New(
		feedback.WithDelay(opts.FeedbackDelay),
		feedback.WithOnChange(func(target string) {
			if target == "" && p != nil {
				p.Send(copyStateMsg{target: target})
			}
		}),
	)
	defer timer.Stop()
	opts.Timer = timer

	p = tea.NewProgram(New(ctrl, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
