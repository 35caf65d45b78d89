package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
	"github.com/DeBrosOfficial/ufwtail/pkg/view"
)

const (
	defaultTableHeight = 20
	chromeHeight       = 9
	rawScrollStep      = 8
)

var columnWidths = []int{15, 6, 4, 8, 5, 18, 6, 18, 6, 12}

// Options configures the viewer.
type Options struct {
	Source          string
	PollInterval    time.Duration
	ShowDescription bool
	Logger          *logging.ColoredLogger
}

type tickMsg time.Time

// Model is the bubbletea model of the live viewer.
type Model struct {
	consumer *pipeline.Consumer
	opts     Options
	logger   *logging.ColoredLogger

	keys  KeyMap
	table table.Model
	input textinput.Model
	help  help.Model

	editing         filter.Slot
	err             error
	status          string
	showDescription bool
	described       bool // showDescription when the table rows were built
	rawOffset       int
	lastVersion     uint64
	loaded          bool
	width           int
	quitting        bool
}

// New creates a viewer over consumer.
func New(consumer *pipeline.Consumer, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	cols := make([]table.Column, len(view.Columns))
	for i, title := range view.Columns {
		cols[i] = table.Column{Title: title, Width: columnWidths[i]}
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#666666")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#00D4AA"))
	t.SetStyles(styles)

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40

	m := Model{
		consumer:        consumer,
		opts:            opts,
		logger:          logger,
		keys:            DefaultKeyMap(),
		table:           t,
		input:           ti,
		help:            help.New(),
		showDescription: opts.ShowDescription,
	}
	return m.refresh()
}

// Init starts the drain ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Editing returns the slot whose editor is open, or 0.
func (m Model) Editing() filter.Slot {
	return m.editing
}

// Err returns the last filter validation error shown to the user.
func (m Model) Err() error {
	return m.err
}

// ShowDescription reports whether service descriptions are displayed.
func (m Model) ShowDescription() bool {
	return m.showDescription
}

// RawOffset returns the horizontal scroll position of the raw line.
func (m Model) RawOffset() int {
	return m.rawOffset
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(3, msg.Height-chromeHeight))
		return m, nil

	case tickMsg:
		m.consumer.Drain()
		return m.refresh(), m.tick()

	case tea.KeyMsg:
		if m.editing != 0 {
			return m.updateEditor(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for i, b := range m.keys.EditSlot {
		if key.Matches(msg, b) {
			return m.openEditor(filter.Slot(i + 1))
		}
	}

	c := m.consumer
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		if c.TogglePause() {
			m.status = "paused"
		} else {
			m.status = "resumed"
		}

	case key.Matches(msg, m.keys.NextIface):
		m.status = ifaceStatus(c.NextInterface())

	case key.Matches(msg, m.keys.PrevIface):
		m.status = ifaceStatus(c.PreviousInterface())

	case key.Matches(msg, m.keys.AllIfaces):
		c.AllInterfaces()
		m.status = "all interfaces"

	case key.Matches(msg, m.keys.WANIface):
		if name, ok := c.SelectWANInterface(); ok {
			m.status = "WAN interface " + name
		} else {
			m.status = "no WAN interface seen yet"
		}

	case key.Matches(msg, m.keys.Direction):
		m.status = "direction " + c.CycleDirection().String()

	case key.Matches(msg, m.keys.Flow):
		m.status = "flow " + c.CycleFlow().String()

	case key.Matches(msg, m.keys.ToggleLocal):
		m.status = visibility("local sources", c.ToggleLocal())

	case key.Matches(msg, m.keys.ToggleWAN):
		m.status = visibility("WAN sources", c.ToggleWAN())

	case key.Matches(msg, m.keys.ClearAll):
		c.ClearFilters()
		m.err = nil
		m.status = "filters cleared"

	case key.Matches(msg, m.keys.Description):
		m.showDescription = !m.showDescription

	case key.Matches(msg, m.keys.Up):
		c.MoveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		c.MoveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		c.MoveCursor(-m.table.Height())

	case key.Matches(msg, m.keys.PageDown):
		c.MoveCursor(m.table.Height())

	case key.Matches(msg, m.keys.Top):
		c.MoveCursor(-c.Projection().Len())

	case key.Matches(msg, m.keys.Bottom):
		c.MoveCursor(c.Projection().Len())

	case key.Matches(msg, m.keys.RawLeft):
		m.rawOffset = max(0, m.rawOffset-rawScrollStep)

	case key.Matches(msg, m.keys.RawRight):
		m.rawOffset = min(m.rawOffset+rawScrollStep, m.maxRawOffset())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		return m, nil
	}
	return m.refresh(), nil
}

func (m Model) openEditor(slot filter.Slot) (tea.Model, tea.Cmd) {
	m.editing = slot
	m.err = nil
	current := ""
	if v, ok := m.consumer.Filters().Slot(slot); ok {
		current = v.Raw
	}
	m.input.Prompt = fmt.Sprintf("F%d %s: ", int(slot), slot)
	m.input.Placeholder = placeholder(slot)
	m.input.SetValue(current)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) closeEditor() Model {
	m.editing = 0
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Apply):
		slot := m.editing
		value := strings.TrimSpace(m.input.Value())
		if err := m.consumer.SetFilter(slot, value); err != nil {
			m.err = err
			m.logger.ComponentDebug(logging.ComponentViewer, "filter rejected",
				zap.String("slot", slot.String()), zap.Error(err))
			return m, nil
		}
		m.err = nil
		if value == "" {
			m.status = slot.String() + " cleared"
		} else {
			m.status = slot.String() + " = " + value
		}
		return m.closeEditor().refresh(), nil

	case key.Matches(msg, m.keys.Cancel):
		m.err = nil
		return m.closeEditor(), nil

	case key.Matches(msg, m.keys.ClearSlot):
		slot := m.editing
		m.consumer.ClearFilter(slot)
		m.err = nil
		m.status = slot.String() + " cleared"
		return m.closeEditor().refresh(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh copies the consumer's published state into the table. Rows are
// rebuilt only when the projection changed.
func (m Model) refresh() Model {
	st := m.consumer.State()
	if st == nil || st.View == nil {
		return m
	}
	if !m.loaded || st.View.Version != m.lastVersion || m.described != m.showDescription {
		rows := make([]table.Row, len(st.View.Rows))
		for i, r := range st.View.Rows {
			rows[i] = r.Cells(m.showDescription)
		}
		m.table.SetRows(rows)
		m.lastVersion = st.View.Version
		m.described = m.showDescription
		m.loaded = true
	}
	if len(st.View.Rows) > 0 {
		m.table.SetCursor(st.View.Cursor)
	}
	return m
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.consumer.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("ufwtail"))
	if m.opts.Source != "" {
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render(m.opts.Source))
	}
	b.WriteString("\n")
	b.WriteString(m.renderSlots(st))
	b.WriteString("\n")
	b.WriteString(m.renderToggles(st))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")
	b.WriteString(m.renderStatus(st))
	b.WriteString("\n")

	if m.editing != 0 {
		b.WriteString(editorStyle.Render(m.input.View()))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render(m.help.View(editorKeys{m.keys})))
	} else {
		b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	}
	return b.String()
}

func (m Model) renderSlots(st *pipeline.State) string {
	parts := make([]string, 0, filter.NumSlots)
	for _, slot := range filter.Slots() {
		value := ""
		if st != nil {
			value = st.Filters[slot-1]
		}
		label := fmt.Sprintf("F%d %s", int(slot), slot)
		if value == "" {
			parts = append(parts, slotIdleStyle.Render(label+": *"))
		} else {
			parts = append(parts, slotActiveStyle.Render(label+": "+value))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderToggles(st *pipeline.State) string {
	if st == nil {
		return ""
	}
	t := st.Toggles
	ifaces := "all"
	if st.Selected != "" {
		ifaces = st.Selected
	}
	return subtitleStyle.Render(fmt.Sprintf(
		"iface %s (%d seen)  dir %s  flow %s  local %s  wan %s",
		ifaces, len(st.Interfaces), t.Direction, t.Flow,
		shown(!t.HideLocal), shown(!t.HideWAN),
	))
}

func (m Model) renderDetail() string {
	row, ok := m.consumer.Projection().SelectedRow()
	if !ok {
		return detailStyle.Render("no entries")
	}
	style := detailStyle
	switch row.Entry.ActionKind {
	case ufwlog.ActionAllow:
		style = allowStyle
	case ufwlog.ActionBlock:
		style = blockStyle
	}
	return style.Render(row.Line(m.showDescription)) + "\n" +
		rawStyle.Render(m.rawWindow(row.Entry.Raw))
}

func (m Model) maxRawOffset() int {
	row, ok := m.consumer.Projection().SelectedRow()
	if !ok {
		return 0
	}
	return max(0, len([]rune(row.Entry.Raw))-1)
}

// rawWindow is the part of raw visible at the current scroll position,
// cut to the terminal width once it is known.
func (m Model) rawWindow(raw string) string {
	r := []rune(raw)
	if len(r) == 0 {
		return "-"
	}
	off := min(m.rawOffset, len(r)-1)
	r = r[off:]
	if m.width > 0 && len(r) > m.width {
		r = r[:m.width]
	}
	return string(r)
}

func (m Model) renderStatus(st *pipeline.State) string {
	if st == nil {
		return ""
	}
	s := st.Stats
	mode := "live"
	if s.Paused {
		mode = pausedStyle.Render("paused")
	} else if !m.consumer.Projection().Following() {
		mode = "scrolled"
	}
	line := fmt.Sprintf("%d/%d shown  skipped %d  dropped %d  rotations %d  %s",
		s.Visible, s.Stored, s.Skipped, s.Dropped, s.Rotations, mode)
	if s.Paused && s.Queued > 0 {
		line += fmt.Sprintf(" (%d queued)", s.Queued)
	}
	if m.status != "" {
		line += "  | " + m.status
	}
	return subtitleStyle.Render(line)
}

func ifaceStatus(name string, ok bool) string {
	if !ok {
		return "no interfaces seen yet"
	}
	return "interface " + name
}

func visibility(what string, hidden bool) string {
	if hidden {
		return what + " hidden"
	}
	return what + " shown"
}

func shown(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func placeholder(slot filter.Slot) string {
	switch slot {
	case filter.SlotInterface:
		return "eth0"
	case filter.SlotProtocol:
		return "TCP"
	case filter.SlotAction:
		return "BLOCK"
	case filter.SlotSource, filter.SlotDestination:
		return "10.0.0.1 or 10.0.0.0/8"
	case filter.SlotPort:
		return "22"
	}
	return ""
}

// Run starts the viewer on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
