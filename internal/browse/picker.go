package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobsearch/internal/config"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	searches []config.SavedSearch
	cursor   int
	chosen   int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			m.cursor = clamp(m.cursor-1, 0, len(m.searches)-1)
		case "down", "j":
			m.cursor = clamp(m.cursor+1, 0, len(m.searches)-1)
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Saved searches"))
	b.WriteByte('\n')

	for i, s := range m.searches {
		label := searchLabel(s)
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + label))
		} else {
			b.WriteString(pickerItemStyle.Render(label))
		}
		b.WriteByte('\n')
	}

	b.WriteString(pickerHintStyle.Render("↑/↓/j/k navigate  enter search  q quit"))
	return b.String()
}

func searchLabel(s config.SavedSearch) string {
	var parts []string
	if len(s.Skills) > 0 {
		parts = append(parts, strings.Join(s.Skills, ", "))
	}
	if s.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", s.Query))
	}
	if len(parts) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, strings.Join(parts, " · "))
}

// RunSearchPicker shows an interactive saved-search selector. It returns
// the chosen index, or -1 if the user quit.
func RunSearchPicker(searches []config.SavedSearch) (int, error) {
	p := tea.NewProgram(pickerModel{searches: searches, chosen: -1})
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	if final := result.(pickerModel); final.chosen >= 0 {
		return final.chosen, nil
	}
	return -1, nil
}
