package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wayfind-cms/wayfind/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// LayoutModel is the bubbletea model for browsing a normalized layout tree.
// The left pane lists sections; the table shows the selected section's
// components.
type LayoutModel struct {
	Path   string
	Tree   *layout.Tree
	Cursor int
}

// NewLayoutModel creates a layout browser for one resolved path.
func NewLayoutModel(path string, tree *layout.Tree) LayoutModel {
	return LayoutModel{Path: path, Tree: tree}
}

func (m LayoutModel) Init() tea.Cmd {
	return nil
}

func (m LayoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Tree.Sections)-1 {
				m.Cursor++
			}
		}
	}
	return m, nil
}

func (m LayoutModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout: " + m.Path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s via %s  ·  ↑/↓ navigate  q quit", m.Tree.ViewMode, m.Tree.Source)))
	b.WriteString("\n\n")

	for i, section := range m.Tree.Sections {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s (%d components)", cursor, section.LayoutID, len(section.Components))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.Tree.Sections) == 0 {
		b.WriteString(listDimStyle.Render("  (no sections)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.componentTable(m.Tree.Sections[m.Cursor]))
	b.WriteString("\n")

	return b.String()
}

// componentTable renders the selected section's components.
func (m LayoutModel) componentTable(section layout.Section) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	for _, c := range section.Components {
		rows = append(rows, []string{c.Kind, c.Region, fmt.Sprintf("%d", c.Weight), c.PluginID, componentTarget(c)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Region", "Weight", "Plugin", "Target").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

// componentTarget summarizes what a component points at.
func componentTarget(c layout.Component) string {
	switch c.Kind {
	case layout.KindField:
		if c.Field == nil {
			return "—"
		}
		return c.Field.EntityTypeID + "." + c.Field.Bundle + "." + c.Field.FieldName
	case layout.KindInlineBlock:
		if c.Inline == nil || c.Inline.Block == nil {
			return "(unresolved)"
		}
		return c.Inline.Block.Type + " " + c.Inline.Block.ID
	default:
		return "—"
	}
}
