package reader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	viewportdto "folio/internal/modules/viewport/dto"
	"folio/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the viewport use-case.
type Port interface {
	Observe(ctx context.Context, observations []viewportdto.Observation)
	Tick(ctx context.Context) (int, bool)
	RequestPage(ctx context.Context, pageIndex int) error
	SetScale(ctx context.Context, scale float64) error
	State(ctx context.Context) viewportdto.ViewerState
	PageText(ctx context.Context, pageIndex int) (viewportdto.PageTextOutput, error)
}

// ScrollTarget drains pending programmatic scroll requests. Each target is
// consumed at most once.
type ScrollTarget interface {
	Take() (int, bool)
}

// ─── messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

type textLoadedMsg struct {
	page int
	text string
	err  error
}

// NavMsg reports the outcome of a page jump or zoom request. It bubbles up so
// the root model can surface errors in the status bar.
type NavMsg struct {
	Err error
}

const (
	tickInterval = 100 * time.Millisecond
	// Rows assumed for a page whose text has not loaded yet. The layout is
	// rebuilt with real heights as loads complete.
	placeholderRows = 8
)

// ─── model ───────────────────────────────────────────────────────────────────

// pageBlock is one page's slot in the scrollable column of pages.
type pageBlock struct {
	startRow int
	rows     int
}

// Model is the self-contained Bubble Tea model for the reading surface. It
// lays every page out in one vertical column, translates the scroll position
// into visibility observations each tick, and jumps on programmatic targets.
type Model struct {
	port     Port
	scroll   ScrollTarget
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	markdown bool
	prefetch int

	state   viewportdto.ViewerState
	blocks  []pageBlock
	texts   map[int]string
	loading map[int]bool
	width   int
	height  int
}

// New creates a reader Model backed by the given ports. markdown selects
// glamour rendering for page text; prefetch is the margin, in viewport
// heights, within which off-screen pages still count as intersecting.
func New(port Port, scroll ScrollTarget, markdown bool, prefetch int) Model {
	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	if prefetch < 0 {
		prefetch = 0
	}
	return Model{
		port:     port,
		scroll:   scroll,
		viewport: vp,
		spinner:  sp,
		renderer: r,
		markdown: markdown,
		prefetch: prefetch,
		texts:    map[int]string{},
		loading:  map[int]bool{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.rebuild()

	case tickMsg:
		cmds = append(cmds, m.onTick()...)
		cmds = append(cmds, tick())

	case textLoadedMsg:
		delete(m.loading, msg.page)
		if msg.err == nil {
			m.texts[msg.page] = m.renderText(msg.text)
			m.rebuild()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	headerH := lipgloss.Height(header)
	footerH := 1

	vpHeight := m.height - headerH - footerH
	if vpHeight < 1 {
		vpHeight = 1
	}
	vp := m.viewport
	vp.Height = vpHeight

	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, vp.View(), footer)
}

// ─── navigation ──────────────────────────────────────────────────────────────

// JumpTo requests an external page set. The engine scrolls the viewport and
// holds organic elections until the jump settles.
func (m Model) JumpTo(pageIndex int) tea.Cmd {
	return func() tea.Msg {
		return NavMsg{Err: m.port.RequestPage(context.Background(), pageIndex)}
	}
}

// NextPage jumps one page forward.
func (m Model) NextPage() tea.Cmd {
	if m.state.CurrentPage >= m.state.PageCount {
		return nil
	}
	return m.JumpTo(m.state.CurrentPage + 1)
}

// PrevPage jumps one page back.
func (m Model) PrevPage() tea.Cmd {
	if m.state.CurrentPage <= 1 {
		return nil
	}
	return m.JumpTo(m.state.CurrentPage - 1)
}

// Zoom multiplies the current scale factor and marks rendered pages stale.
func (m Model) Zoom(factor float64) tea.Cmd {
	next := m.state.Scale * factor
	return func() tea.Msg {
		return NavMsg{Err: m.port.SetScale(context.Background(), next)}
	}
}

// CurrentPage returns the last observed reading position.
func (m Model) CurrentPage() int { return m.state.CurrentPage }

// PageCount returns the open document's page count.
func (m Model) PageCount() int { return m.state.PageCount }

// ─── tick pipeline ───────────────────────────────────────────────────────────

// onTick runs one engine cycle: drain programmatic scroll targets, emit
// visibility observations for the current window, advance the debounce
// clock, and queue text loads for pages entering view.
func (m *Model) onTick() []tea.Cmd {
	ctx := context.Background()

	if target, ok := m.scroll.Take(); ok {
		m.jumpViewport(target)
	}

	obs := m.observations()
	if len(obs) > 0 {
		m.port.Observe(ctx, obs)
	}
	m.port.Tick(ctx)
	m.state = m.port.State(ctx)

	if len(m.blocks) != m.state.PageCount {
		m.rebuild()
	}

	var cmds []tea.Cmd
	for _, o := range obs {
		if !o.Intersecting {
			continue
		}
		if _, ok := m.texts[o.PageIndex]; ok {
			continue
		}
		if m.loading[o.PageIndex] {
			continue
		}
		m.loading[o.PageIndex] = true
		cmds = append(cmds, m.loadTextCmd(o.PageIndex))
	}
	return cmds
}

// observations maps the scroll window onto page row ranges. Pages within
// the prefetch margin above or below the window count as intersecting at
// ratio zero so the scheduler renders them before they come on screen.
func (m Model) observations() []viewportdto.Observation {
	if len(m.blocks) == 0 || m.viewport.Height <= 0 {
		return nil
	}
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	margin := m.prefetch * m.viewport.Height

	var obs []viewportdto.Observation
	for i, b := range m.blocks {
		blockTop := b.startRow
		blockBottom := b.startRow + b.rows
		if blockBottom <= top-margin || blockTop >= bottom+margin {
			continue
		}
		overlap := min(bottom, blockBottom) - max(top, blockTop)
		ratio := 0.0
		if overlap > 0 && b.rows > 0 {
			ratio = float64(overlap) / float64(b.rows)
		}
		obs = append(obs, viewportdto.Observation{
			PageIndex:    i + 1,
			Ratio:        ratio,
			Intersecting: true,
		})
	}
	return obs
}

// jumpViewport scrolls so the given page's first row is at the top.
func (m *Model) jumpViewport(pageIndex int) {
	if pageIndex < 1 || pageIndex > len(m.blocks) {
		return
	}
	m.viewport.SetYOffset(m.blocks[pageIndex-1].startRow)
}

func (m Model) loadTextCmd(pageIndex int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.PageText(context.Background(), pageIndex)
		return textLoadedMsg{page: pageIndex, text: out.Text, err: err}
	}
}

// ─── layout ──────────────────────────────────────────────────────────────────

// rebuild recomputes the page column and pushes it into the viewport,
// keeping the scroll offset stable across text loads.
func (m *Model) rebuild() {
	count := m.state.PageCount
	if count == 0 {
		m.blocks = nil
		m.viewport.SetContent(theme.Muted.Render("(no document)"))
		return
	}

	offset := m.viewport.YOffset
	m.blocks = make([]pageBlock, count)

	var sb strings.Builder
	row := 0
	for i := 1; i <= count; i++ {
		body, loaded := m.texts[i]
		if !loaded {
			body = m.placeholder(i)
		}
		sep := m.pageSeparator(i)
		block := sep + "\n" + body + "\n"
		rows := lipgloss.Height(block)
		m.blocks[i-1] = pageBlock{startRow: row, rows: rows}
		sb.WriteString(block)
		row += rows
	}

	m.viewport.SetContent(sb.String())
	m.viewport.SetYOffset(offset)
}

func (m Model) placeholder(pageIndex int) string {
	line := m.spinner.View() + theme.Muted.Render(fmt.Sprintf(" rendering page %d…", pageIndex))
	return line + strings.Repeat("\n", placeholderRows-1)
}

func (m Model) pageSeparator(pageIndex int) string {
	label := fmt.Sprintf("── page %d ", pageIndex)
	width := m.width - lipgloss.Width(label)
	if width < 0 {
		width = 0
	}
	return theme.PageBreak.Render(label + strings.Repeat("─", width))
}

func (m Model) renderText(text string) string {
	if m.markdown && m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return text
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	// header = 1 line, footer = 1 line
	m.viewport.Height = m.height - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if m.markdown {
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(m.width),
		); err == nil {
			m.renderer = r
		}
	}
}

// ─── chrome ──────────────────────────────────────────────────────────────────

func (m Model) renderHeader() string {
	if m.state.PageCount == 0 {
		return theme.Title.Render("Folio") + "\n"
	}
	parts := []string{
		theme.Title.Render(fmt.Sprintf("p.%d/%d", m.state.CurrentPage, m.state.PageCount)),
		theme.Muted.Render(fmt.Sprintf("%.0f%%", m.state.Scale*100)),
		theme.Muted.Render(fmt.Sprintf("%d rendered", len(m.state.RenderedPages))),
	}
	if m.state.NavLocked {
		parts = append(parts, theme.Hot.Render("scrolling"))
	}
	nav := theme.Muted.Render("  ↑/↓: scroll  ←/→: page  +/-: zoom  space: pause")
	return strings.Join(parts, "  ") + nav + "\n"
}

func (m Model) renderFooter() string {
	return theme.Muted.Render(fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100))
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
