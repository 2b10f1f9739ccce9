package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corriander/channelhop/pkg/plan"
	"github.com/corriander/channelhop/pkg/travel"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// OptionListModel - Interactive option browsing
// =============================================================================

// OptionListModel is the bubbletea model for browsing trip options.
// Options are listed cheapest first; enter expands the itinerary detail
// for the option under the cursor.
type OptionListModel struct {
	Options  []plan.Option
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// NewOptionListModel creates a new option list model.
func NewOptionListModel(options []plan.Option) OptionListModel {
	return OptionListModel{
		Options: options,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m OptionListModel) Init() tea.Cmd {
	return nil
}

func (m OptionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Options)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		if msg.Height > 6 {
			m.Height = msg.Height - 6
		}
	}
	return m, nil
}

func (m OptionListModel) View() string {
	if len(m.Options) == 0 {
		return listDimStyle.Render("No options to browse") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Trip options") + " " +
		listDimStyle.Render(fmt.Sprintf("(%d, cheapest first)", len(m.Options))) + "\n\n")

	end := m.Offset + m.Height
	if end > len(m.Options) {
		end = len(m.Options)
	}
	for i := m.Offset; i < end; i++ {
		line := fmt.Sprintf("%2d. %s", i+1, describeOption(m.Options[i]))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("> "+line) + "\n")
			if m.Expanded {
				b.WriteString(itineraryDetail(m.Options[i]))
			}
		} else {
			b.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n" + listDimStyle.Render("↑/↓ move · enter expand · q quit") + "\n")
	return b.String()
}

// itineraryDetail renders both legs of an option, indented under its
// list entry.
func itineraryDetail(opt plan.Option) string {
	var b strings.Builder
	for _, leg := range []struct {
		name string
		itin travel.Itinerary
	}{
		{"outward", opt.Outward},
		{"return", opt.Return},
	} {
		b.WriteString(listDimStyle.Render("     "+leg.name) + "\n")
		for _, wp := range leg.itin.Waypoints {
			b.WriteString(listNormalStyle.Render("       "+wp.String()) + "\n")
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("     £%.2f per direction (avg)", opt.CostPerDirection())) + "\n")
	return b.String()
}
