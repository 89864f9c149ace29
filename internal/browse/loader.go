package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobsearch/internal/model"
)

// loaderTimeout bounds the whole pipeline run behind the spinner.
const loaderTimeout = 3 * time.Minute

var errCancelled = errors.New("cancelled")

// SearchFunc runs one search and returns its response.
type SearchFunc func(ctx context.Context) (model.SearchResponse, error)

type searchDoneMsg struct {
	resp model.SearchResponse
	err  error
}

type loaderModel struct {
	label   string
	search  SearchFunc
	spinner spinner.Model
	result  model.SearchResponse
	err     error
	done    bool
}

func newLoaderModel(label string, search SearchFunc) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{label: label, search: search, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.spinner.Tick)
}

func (m loaderModel) doSearch() tea.Cmd {
	search := m.search
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loaderTimeout)
		defer cancel()
		resp, err := search(ctx)
		return searchDoneMsg{resp: resp, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.result = msg.resp
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Searching %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while search runs. It renders inline (no alt
// screen).
func RunLoader(label string, search SearchFunc) (model.SearchResponse, error) {
	p := tea.NewProgram(newLoaderModel(label, search))
	result, err := p.Run()
	if err != nil {
		return model.SearchResponse{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
