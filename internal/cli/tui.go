package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/treescope/treescope/pkg/tree"
	"github.com/treescope/treescope/pkg/viewer"
)

// Outline styles
var (
	outlineSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	outlineNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	outlineDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	outlineMatchStyle     = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)
	outlineHighlightStyle = lipgloss.NewStyle().Foreground(colorYellow)
	outlineStatusStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// TreeModel - Interactive tree exploration
// =============================================================================

// outlineRow is one visible node in display order.
type outlineRow struct {
	node  *tree.Node
	depth int
}

// TreeModel is the bubbletea model for interactive tree exploration.
type TreeModel struct {
	Viewer *viewer.Viewer
	Title  string

	rows   []outlineRow
	cursor int
	offset int
	height int
	width  int

	searching   bool
	searchInput string
	matchIDs    map[int]bool
	status      string
}

// NewTreeModel creates a model over an already-rebuilt viewer.
func NewTreeModel(v *viewer.Viewer, title string) TreeModel {
	m := TreeModel{
		Viewer: v,
		Title:  title,
		height: 20,
		width:  80,
	}
	m.refresh()
	return m
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
		m.clampCursor()
	}
	return m, nil
}

func (m TreeModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampCursor()

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.clampCursor()

	case "g":
		m.cursor = 0
		m.clampCursor()

	case "G":
		m.cursor = len(m.rows) - 1
		m.clampCursor()

	case "enter", " ":
		if n := m.selected(); n != nil && n.HasChildren() {
			if err := m.Viewer.ToggleNode(ctx, n.ID); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.refreshKeeping(n.ID)
		}

	case "C":
		m.Viewer.ToggleAll(ctx, true)
		m.refresh()

	case "E":
		m.Viewer.ToggleAll(ctx, false)
		m.refresh()

	case "/":
		m.searching = true
		m.searchInput = ""

	case "n":
		if match, ok := m.Viewer.Navigate(ctx, viewer.Forward); ok {
			m.refreshKeeping(match.NodeID)
		}

	case "N":
		if match, ok := m.Viewer.Navigate(ctx, viewer.Backward); ok {
			m.refreshKeeping(match.NodeID)
		}

	case "p":
		if n := m.selected(); n != nil {
			if _, err := m.Viewer.HighlightPath(n.ID); err != nil {
				m.status = err.Error()
			}
		}

	case "esc":
		m.Viewer.ClearHighlight()
		m.Viewer.Search(ctx, "")
		m.matchIDs = nil
		m.status = ""
	}
	return m, nil
}

func (m TreeModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput = ""

	case "enter":
		m.searching = false
		count := m.Viewer.Search(context.Background(), m.searchInput)
		m.status = fmt.Sprintf("%d matches for %q", count, strings.TrimSpace(m.searchInput))
		if current, ok := currentMatch(m.Viewer); ok {
			m.refreshKeeping(current)
		} else {
			m.refresh()
		}

	case "backspace":
		if len(m.searchInput) > 0 {
			m.searchInput = m.searchInput[:len(m.searchInput)-1]
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.searchInput += string(msg.Runes)
		}
	}
	return m, nil
}

func currentMatch(v *viewer.Viewer) (int, bool) {
	matches := v.SearchMatches()
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].NodeID, true
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(outlineDimStyle.Render("↑/↓ move  ⏎ toggle  E/C expand/collapse all  / search  n/N next/prev  p path  esc clear  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m TreeModel) renderRow(i int) string {
	r := m.rows[i]
	n := r.node

	marker := "  "
	switch {
	case n.IsCollapsed():
		marker = "▸ "
	case n.IsExpanded():
		marker = "▾ "
	}

	style := outlineNormalStyle
	switch {
	case i == m.cursor:
		style = outlineSelectedStyle
	case m.matchIDs != nil && m.matchIDs[n.ID]:
		style = outlineMatchStyle
	case m.Viewer.Highlighted(n.ID):
		style = outlineHighlightStyle
	}

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}

	line := cursor + strings.Repeat("  ", r.depth) + marker + style.Render(n.Name)
	if len(n.Properties) > 0 {
		parts := make([]string, 0, len(n.Properties))
		for _, p := range n.Properties {
			parts = append(parts, p.Key+": "+p.Value)
		}
		line += "  " + outlineDimStyle.Render(strings.Join(parts, "  "))
	}
	if n.IsCollapsed() {
		line += " " + outlineDimStyle.Render(fmt.Sprintf("(%d hidden)", n.Descendants()))
	}
	return truncate(line, m.width)
}

func (m TreeModel) statusLine() string {
	if m.searching {
		return outlineStatusStyle.Render("search: ") + StyleHighlight.Render(m.searchInput+"█")
	}
	parts := []string{
		fmt.Sprintf("%d/%d nodes", m.Viewer.VisibleNodeCount(), m.Viewer.TotalNodeCount()),
		fmt.Sprintf("zoom %.0f%%", m.Viewer.Camera().Scale()*100),
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return outlineStatusStyle.Render(strings.Join(parts, "  ·  "))
}

// =============================================================================
// Row management
// =============================================================================

// refresh rebuilds the display rows from the viewer's visible nodes.
func (m *TreeModel) refresh() {
	t := m.Viewer.Tree()
	m.rows = m.rows[:0]
	if !t.IsEmpty() {
		t.Root.WalkVisible(func(n *tree.Node) bool {
			m.rows = append(m.rows, outlineRow{node: n, depth: n.Level})
			return true
		})
	}
	m.matchIDs = nil
	if matches := m.Viewer.SearchMatches(); len(matches) > 0 {
		m.matchIDs = make(map[int]bool, len(matches))
		for _, match := range matches {
			m.matchIDs[match.NodeID] = true
		}
	}
	m.clampCursor()
}

// refreshKeeping rebuilds rows and moves the cursor to the given node.
func (m *TreeModel) refreshKeeping(id int) {
	m.refresh()
	for i, r := range m.rows {
		if r.node.ID == id {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

func (m *TreeModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m TreeModel) selected() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
