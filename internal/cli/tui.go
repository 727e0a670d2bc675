package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/render"
)

var (
	tuiSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tuiCanvasStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// tuiChrome is the number of terminal lines the editor uses around the canvas.
const tuiChrome = 7

// =============================================================================
// EditorModel - Interactive layout editing
// =============================================================================

// savedMsg reports the outcome of a save started from the editor.
type savedMsg struct{ err error }

// SaveFunc persists the session's layout.
type SaveFunc func(*grid.Layout) error

// EditorModel is the bubbletea model for interactive layout editing. It
// works on one [grid.Editor]; nothing is persisted until the user saves.
type EditorModel struct {
	ed     *grid.Editor
	save   SaveFunc
	bp     grid.Breakpoint
	status string
	dirty  bool
	saving bool
	quit   bool

	// rev counts edits; savedRev is the count captured by the last save.
	rev, savedRev int

	Width, Height int
}

// NewEditorModel creates a model over ed. The first item is selected.
func NewEditorModel(ed *grid.Editor, save SaveFunc) EditorModel {
	m := EditorModel{ed: ed, save: save, bp: grid.Desktop, Width: 80, Height: 24}
	if items := ed.Layout().Items; len(items) > 0 {
		ed.Select(items[0].ID)
	}
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

// selected returns the single selected item id, or "".
func (m EditorModel) selected() string {
	if sel := m.ed.Selection(); len(sel) > 0 {
		return sel[0]
	}
	return ""
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.dirty = m.rev != m.savedRev
		m.status = "saved"
		if m.dirty {
			m.status = "saved; newer changes are unsaved"
			m.quit = false
			return m, nil
		}
		if m.quit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && key != "esc" {
		m.quit = false
	}
	id := m.selected()
	m.status = ""

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.dirty && !m.quit {
			m.quit = true
			m.status = "unsaved changes: press q again to discard, s to save"
			return m, nil
		}
		return m, tea.Quit

	case "left", "h":
		m.edit(m.ed.NudgeItem(id, m.bp, -1, 0))
	case "right", "l":
		m.edit(m.ed.NudgeItem(id, m.bp, 1, 0))
	case "up", "k":
		m.edit(m.ed.NudgeItem(id, m.bp, 0, -1))
	case "down", "j":
		m.edit(m.ed.NudgeItem(id, m.bp, 0, 1))
	case "shift+left", "H":
		m.resize(id, -1, 0)
	case "shift+right", "L":
		m.resize(id, 1, 0)
	case "shift+up", "K":
		m.resize(id, 0, -1)
	case "shift+down", "J":
		m.resize(id, 0, 1)

	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)

	case "a":
		it := m.ed.AddItem(grid.KindText, grid.SizeHint{})
		m.ed.SetContent(it.ID, grid.Content{Inline: &grid.Inline{Text: "Text"}})
		m.markDirty()
		m.status = "added " + it.ID
	case "d":
		if copies := m.ed.DuplicateItems([]string{id}); len(copies) > 0 {
			m.markDirty()
			m.status = "duplicated to " + copies[0].ID
		}
	case "x", "delete":
		if m.ed.DeleteItems([]string{id}) > 0 {
			m.markDirty()
			m.status = "deleted " + id
			if items := m.ed.Layout().Items; len(items) > 0 {
				m.ed.Select(items[0].ID)
			}
		}
	case "f":
		m.edit(m.ed.SetZOrder(id, grid.ZFront))
	case "b":
		m.edit(m.ed.SetZOrder(id, grid.ZBack))
	case "v":
		if m.bp != grid.Desktop {
			it, ok := m.ed.Item(id)
			if ok {
				m.edit(m.ed.SetVisible(id, m.bp, !grid.ResolvePosition(it, m.bp).Visible))
			}
		}
	case "c":
		if m.bp != grid.Desktop {
			m.edit(m.ed.ClearOverride(id, m.bp))
		}
	case "r":
		report := m.ed.Resolve(m.bp)
		m.markDirty()
		m.status = fmt.Sprintf("resolved %s: %d moved", report.Breakpoint, report.Moved)
		if report.Unresolved > 0 {
			m.status += fmt.Sprintf(", %d still overlap", report.Unresolved)
		}

	case "1":
		m.bp = grid.Desktop
	case "2":
		m.bp = grid.Tablet
	case "3":
		m.bp = grid.Mobile

	case "s":
		if m.saving || m.save == nil {
			return m, nil
		}
		m.saving = true
		m.savedRev = m.rev
		m.status = "saving..."
		l := m.ed.Layout().Clone()
		save := m.save
		return m, func() tea.Msg { return savedMsg{err: save(l)} }
	}
	return m, nil
}

func (m *EditorModel) edit(changed bool) {
	if changed {
		m.markDirty()
	}
}

func (m *EditorModel) markDirty() {
	m.dirty = true
	m.rev++
}

func (m *EditorModel) resize(id string, dw, dh int) {
	it, ok := m.ed.Item(id)
	if !ok {
		return
	}
	pos := grid.ResolvePosition(it, m.bp)
	m.edit(m.ed.ResizeItem(id, m.bp, pos.W+dw, pos.H+dh))
}

// cycle moves the selection through items in insertion order.
func (m *EditorModel) cycle(step int) {
	items := m.ed.Layout().Items
	if len(items) == 0 {
		return
	}
	i := m.ed.Layout().Index(m.selected())
	i = (i + step + len(items)) % len(items)
	m.ed.Select(items[i].ID)
}

func (m EditorModel) View() string {
	var b strings.Builder
	l := m.ed.Layout()

	title := l.ID
	if l.Name != "" {
		title = l.Name
	}
	b.WriteString(StyleTitle.Render(title))
	if m.dirty {
		b.WriteString(StyleWarning.Render(" *"))
	}
	b.WriteString("  ")
	for _, bp := range grid.Breakpoints {
		label := fmt.Sprintf("[%s]", bp)
		if bp == m.bp {
			b.WriteString(tuiSelectedStyle.Render(label))
		} else {
			b.WriteString(tuiDimStyle.Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")

	cols := max(m.Width-2, 10)
	rows := max(m.Height-tuiChrome, 4)
	b.WriteString(tuiCanvasStyle.Render(render.RenderText(grid.EditView(l, m.bp), l.Canvas, cols, rows)))
	b.WriteString("\n")

	if it, ok := m.ed.Item(m.selected()); ok {
		pos := grid.ResolvePosition(it, m.bp)
		line := fmt.Sprintf("%s  %s  (%d, %d) %dx%d  z=%d", it.ID, shortKind(it.Kind), pos.X, pos.Y, pos.W, pos.H, it.Z)
		if grid.IsOverridden(it, m.bp) {
			line += "  override"
		}
		if !pos.Visible {
			line += "  hidden"
		}
		b.WriteString(tuiSelectedStyle.Render(line))
	} else {
		b.WriteString(tuiDimStyle.Render("no items (a to add)"))
	}
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("arrows move  shift+arrows resize  tab select  a add  d dup  x del  f/b z  r resolve  v hide  c clear  1/2/3 bp  s save  q quit"))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleDim.Render(m.status))
	}
	return b.String()
}

// Layout returns the layout being edited.
func (m EditorModel) Layout() *grid.Layout { return m.ed.Layout() }

// Dirty reports whether there are unsaved changes.
func (m EditorModel) Dirty() bool { return m.dirty }
