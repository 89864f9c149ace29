package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobsearch/internal/model"
)

// Lines per job item in the list pane (title + subtitle + blank separator).
const jobItemHeight = 3

const (
	paneList = iota
	paneDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle   = headerStyle.Foreground(lipgloss.Color("39"))
	inactiveHeaderStyle = headerStyle.Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle    = lipgloss.NewStyle().Bold(true)
	jobSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	scoreHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	scoreMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	scoreLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// openURL is swapped out in tests.
var openURL = openInBrowser

type browserModel struct {
	jobs       []model.Job
	notice     string // shown instead of the list when there are no jobs
	list       viewport.Model
	detail     viewport.Model
	activePane int
	cursor     int
	width      int
	height     int
	ready      bool
	wantQuit   bool
}

func newBrowserModel(resp model.SearchResponse) browserModel {
	return browserModel{jobs: resp.Jobs, notice: resp.Error}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "b":
			return m, tea.Quit
		case "tab", "left", "right":
			m.activePane = 1 - m.activePane
			m.recalcContent()
			return m, nil
		case "o":
			if job, ok := m.selected(); ok && job.URL != model.NoURL {
				openURL(job.URL)
			}
			return m, nil
		case "up", "k":
			if m.activePane == paneList {
				m.moveCursor(-1)
				return m, nil
			}
		case "down", "j":
			if m.activePane == paneList {
				m.moveCursor(1)
				return m, nil
			}
		}

		// Remaining keys (pgup/pgdn/home/end, arrows in the detail pane)
		// scroll the active viewport.
		var cmd tea.Cmd
		if m.activePane == paneList {
			m.list, cmd = m.list.Update(msg)
		} else {
			m.detail, cmd = m.detail.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m browserModel) selected() (model.Job, bool) {
	if len(m.jobs) == 0 {
		return model.Job{}, false
	}
	return m.jobs[m.cursor], true
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.jobs)-1, 0))
	m.recalcContent()
	m.detail.SetYOffset(0)

	top := m.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m *browserModel) recalcLayout() {
	// The list pane takes two fifths; 2 border chars per pane + 1 gap.
	listWidth := max((m.width-5)*2/5, 24)
	detailWidth := max(m.width-5-listWidth, 30)

	// Header (1 line) + border top/bottom (2) + status bar (1).
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(listWidth, paneHeight)
		m.detail = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = listWidth, paneHeight
		m.detail.Width, m.detail.Height = detailWidth, paneHeight
	}
	m.recalcContent()
}

func (m *browserModel) recalcContent() {
	if len(m.jobs) == 0 {
		notice := m.notice
		if notice == "" {
			notice = "(no jobs)"
		}
		m.list.SetContent("  " + notice)
		m.detail.SetContent("")
		return
	}
	m.list.SetContent(renderJobs(m.jobs, m.cursor, m.activePane == paneList))
	m.detail.SetContent(renderDetail(m.jobs[m.cursor], max(m.detail.Width-2, 20)))
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listHeader := fmt.Sprintf(" Results (%d)", len(m.jobs))
	detailHeader := " Details"

	listBorder, detailBorder := activeBorderStyle, inactiveBorderStyle
	listHeaderSt, detailHeaderSt := activeHeaderStyle, inactiveHeaderStyle
	if m.activePane == paneDetail {
		listBorder, detailBorder = inactiveBorderStyle, activeBorderStyle
		listHeaderSt, detailHeaderSt = inactiveHeaderStyle, activeHeaderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.list.Width+2).Render(listHeaderSt.Render(listHeader)),
		" ",
		lipgloss.NewStyle().Width(m.detail.Width+2).Render(detailHeaderSt.Render(detailHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Width(m.list.Width).Render(m.list.View()),
		" ",
		detailBorder.Width(m.detail.Width).Render(m.detail.View()),
	)

	statusBar := statusBarStyle.Width(m.width).Render(
		" ↑/↓ select  Tab switch pane  o open in browser  Esc back  q quit")

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderJobs(jobs []model.Job, cursor int, isActive bool) string {
	var b strings.Builder
	for i, j := range jobs {
		titleSt, subtitleSt, prefix := jobTitleStyle, jobSubtitleStyle, "  "
		if isActive && i == cursor {
			titleSt, subtitleSt, prefix = selectedJobTitleStyle, selectedJobSubtitleStyle, "> "
		} else if i == cursor {
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(j.Title))
		b.WriteByte('\n')

		sub := j.Company + " · " + j.Location
		if j.MatchScore != nil {
			sub += " · " + strconv.Itoa(*j.MatchScore) + "%"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(sub))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderDetail(j model.Job, wrapWidth int) string {
	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(detailTitleStyle.Render(wordWrap(j.Title, wrapWidth)))
	b.WriteString("\n\n")

	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Type", j.JobType)
	addField("Salary", formatSalary(j))
	addField("Source", j.Source)
	if j.MatchScore != nil {
		addField("Match", scoreStyle(*j.MatchScore).Render(fmt.Sprintf("%d/100", *j.MatchScore)))
	}
	if len(j.Skills) > 0 {
		addField("Skills", wordWrap(strings.Join(j.Skills, ", "), max(wrapWidth-12, 10)))
	}
	addField("URL", j.URL)

	fill := strings.Repeat("─", max(wrapWidth-len("── Description "), 3))
	b.WriteByte('\n')
	b.WriteString(dividerStyle.Render("── Description " + fill))
	b.WriteString("\n\n")
	b.WriteString(wordWrap(j.Description, wrapWidth))
	b.WriteByte('\n')

	return b.String()
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return scoreHighStyle
	case score >= 40:
		return scoreMidStyle
	default:
		return scoreLowStyle
	}
}

func formatSalary(j model.Job) string {
	if j.SalaryMin == nil && j.SalaryMax == nil {
		return ""
	}
	var lo, hi string
	if j.SalaryMin != nil {
		lo = strconv.FormatFloat(*j.SalaryMin, 'f', 0, 64)
	}
	if j.SalaryMax != nil {
		hi = strconv.FormatFloat(*j.SalaryMax, 'f', 0, 64)
	}
	out := lo
	switch {
	case lo == "":
		out = "up to " + hi
	case hi != "" && hi != lo:
		out = lo + " - " + hi
	}
	if j.SalaryCurrency != "" {
		out = j.SalaryCurrency + " " + out
	}
	return out
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openInBrowser opens url in the default system browser, fire-and-forget.
func openInBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowser shows search results in the split-pane viewer. It returns
// wantQuit=true if the user pressed q, false if they pressed esc to go back.
func RunBrowser(resp model.SearchResponse) (bool, error) {
	p := tea.NewProgram(newBrowserModel(resp), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(browserModel).wantQuit, nil
}
