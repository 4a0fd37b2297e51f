package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pedalstack/pedalstack/pkg/catalog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PedalListModel - Interactive signal chain building
// =============================================================================

// PedalListModel is the bubbletea model for picking pedals from the catalog
// and ordering them into a signal chain. Space toggles a pedal; the chain
// follows selection order.
type PedalListModel struct {
	Pedals []*catalog.PedalRecord
	Cursor int
	Chain  []string
	Done   bool
	Height int
	Offset int
}

// NewPedalListModel creates a new pedal list model.
func NewPedalListModel(pedals []*catalog.PedalRecord) PedalListModel {
	return PedalListModel{
		Pedals: pedals,
		Height: 15,
	}
}

func (m PedalListModel) Init() tea.Cmd {
	return nil
}

func (m PedalListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Chain = nil
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Pedals)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.Chain = m.toggle(m.Pedals[m.Cursor].ID)
		case "enter":
			if len(m.Chain) == 0 {
				return m, nil
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// toggle adds id to the chain, or removes it when already present.
func (m PedalListModel) toggle(id string) []string {
	for i, c := range m.Chain {
		if c == id {
			return append(m.Chain[:i:i], m.Chain[i+1:]...)
		}
	}
	return append(m.Chain, id)
}

// chainPos returns the 1-based chain position of id, or 0 when unselected.
func (m PedalListModel) chainPos(id string) int {
	for i, c := range m.Chain {
		if c == id {
			return i + 1
		}
	}
	return 0
}

func (m PedalListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Build Signal Chain"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Pedals) {
		end = len(m.Pedals)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Pedals[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		pos := "—"
		if n := m.chainPos(p.ID); n > 0 {
			pos = fmt.Sprintf("%d", n)
		}

		size := fmt.Sprintf("%.1f × %.1f %s", p.Width, p.Depth, p.Units)
		rows = append(rows, []string{cursor, p.ID, p.Name, size, pos})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Pedal", "Size", "#").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Pedals) {
				return lipgloss.NewStyle()
			}
			selected := m.chainPos(m.Pedals[actualIdx].ID) > 0
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if selected {
					return base.Foreground(colorGreen).Bold(true)
				}
				return listSelectedStyle
			}
			if selected {
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if len(m.Chain) > 0 {
		b.WriteString("  " + listDimStyle.Render(strings.Join(m.Chain, " "+iconArrow+" ")))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Pedals))))

	return b.String()
}

// pickChain runs the interactive pedal picker and returns the chosen chain
// order, or nil when the user aborted.
func pickChain(pedals []*catalog.PedalRecord) ([]string, error) {
	m := NewPedalListModel(pedals)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := finalModel.(PedalListModel)
	if !ok || !fm.Done {
		return nil, nil
	}
	return fm.Chain, nil
}
