package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "folio/internal/modules/session/dto"
	"folio/internal/ui/theme"
	readerview "folio/internal/ui/views/reader"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// The reading surface's port lives in its own package; this orchestration
// layer only needs the session clock.

type sessionPort interface {
	TogglePause(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (sessiondto.StatsOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type statsTickMsg time.Time

type statsLoadedMsg struct {
	stats sessiondto.StatsOutput
	err   error
}

type pauseToggledMsg struct {
	paused bool
	err    error
}

const statsInterval = time.Second

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Scroll key.Binding
	PrevPg key.Binding
	NextPg key.Binding
	Goto   key.Binding
	ZoomIn key.Binding
	ZoomOu key.Binding
	Pause  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Scroll: key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "scroll")),
		PrevPg: key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "page")),
		NextPg: key.NewBinding(key.WithKeys("right"), key.WithHelp("←/→", "page")),
		Goto:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		ZoomIn: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOu: key.NewBinding(key.WithKeys("-"), key.WithHelp("+/-", "zoom")),
		Pause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevPg, k.Goto, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scroll, k.PrevPg, k.NextPg, k.Goto},
		{k.ZoomIn, k.ZoomOu, k.Pause},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the help overlay, the go-to-page
// prompt, and the session status bar; reading behaviour is delegated to the
// reader view and its ports.
type Model struct {
	title   string
	session sessionPort

	readView readerview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	gotoMode bool
	gotoBuf  string
	stats    sessiondto.StatsOutput
	hasStats bool
	status   string
	width    int
	height   int
}

// NewModel wires the root model. title is shown in the status bar, usually
// the document's file name.
func NewModel(title string, read readerview.Model, session sessionPort) Model {
	return Model{
		title:    title,
		session:  session,
		readView: read,
		keys:     defaultKeys(),
		help:     help.New(),
		status:   "reading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.readView.Init(), statsTick())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 1}
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(sz)
		return m, cmd

	case statsTickMsg:
		cmds = append(cmds, m.loadStatsCmd(), statsTick())
		return m, tea.Batch(cmds...)

	case statsLoadedMsg:
		if msg.err == nil {
			m.stats = msg.stats
			m.hasStats = true
		}
		return m, nil

	case pauseToggledMsg:
		if msg.err != nil {
			m.status = "pause: " + msg.err.Error()
		} else if msg.paused {
			m.status = "paused"
		} else {
			m.status = "reading"
		}
		return m, m.loadStatsCmd()

	case readerview.NavMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.gotoMode {
			return m.updateGoto(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "g":
			m.gotoMode = true
			m.gotoBuf = ""
			return m, nil
		case " ":
			return m, m.togglePauseCmd()
		case "left":
			return m, m.readView.PrevPage()
		case "right":
			return m, m.readView.NextPage()
		case "+", "=":
			return m, m.readView.Zoom(1.25)
		case "-":
			return m, m.readView.Zoom(0.8)
		}
	}

	var cmd tea.Cmd
	m.readView, cmd = m.readView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// updateGoto accumulates digits for the go-to-page prompt.
func (m Model) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gotoMode = false
		m.gotoBuf = ""
	case "enter":
		m.gotoMode = false
		page, err := strconv.Atoi(m.gotoBuf)
		m.gotoBuf = ""
		if err != nil {
			return m, nil
		}
		return m, m.readView.JumpTo(page)
	case "backspace":
		if len(m.gotoBuf) > 0 {
			m.gotoBuf = m.gotoBuf[:len(m.gotoBuf)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.gotoBuf += s
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	if m.showHelp {
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	} else {
		content = m.readView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderStatusBar() string {
	left := theme.Title.Render(m.title)
	if m.gotoMode {
		left += "  " + theme.Hot.Render("go to page: "+m.gotoBuf+"▌")
	} else if m.hasStats {
		mark := theme.Good.Render("●")
		if m.stats.Paused {
			mark = theme.Hot.Render("⏸")
		}
		left += fmt.Sprintf("  %s %s  page %s",
			mark,
			formatMs(m.stats.SessionMs),
			formatMs(m.stats.PageMs),
		)
	}
	right := theme.Muted.Render(m.status + "  ?:help  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.session.Stats(context.Background())
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m Model) togglePauseCmd() tea.Cmd {
	return func() tea.Msg {
		paused, err := m.session.TogglePause(context.Background())
		return pauseToggledMsg{paused: paused, err: err}
	}
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// formatMs renders a millisecond count as a compact clock, e.g. "4m05s".
func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	mnt := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mnt)
	}
	return fmt.Sprintf("%dm%02ds", mnt, s)
}
