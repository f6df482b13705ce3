package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"depscan/internal/scanner"
)

// eventMsg wraps one scan event for the bubbletea loop.
type eventMsg scanner.Event

// streamClosedMsg signals that the scan stream ended.
type streamClosedMsg struct{}

// ScanModel is the TUI model for a live scan. It consumes the ordered
// event stream and keeps the last few status lines on screen.
type ScanModel struct {
	Repo     string
	Events   <-chan scanner.Event
	Result   *scanner.Result
	Err      string
	Quitting bool

	percent  float64
	message  string
	current  string
	log      []string
	done     bool
	progress progress.Model
	spinner  spinner.Model
	width    int
}

const maxLogLines = 6

// NewScanModel creates a scan model over an event stream.
func NewScanModel(repo string, events <-chan scanner.Event) ScanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return ScanModel{
		Repo:     repo,
		Events:   events,
		message:  "Starting scan...",
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
	}
}

func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.Events))
}

func waitForEvent(events <-chan scanner.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 10
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		return m, nil

	case eventMsg:
		ev := scanner.Event(msg)
		switch ev.Type {
		case scanner.EventStatus:
			m.percent = float64(ev.Progress) / 100
			m.message = ev.Message
			if ev.CurrentFile != "" {
				m.current = ev.CurrentFile
			}
			if ev.CurrentPackage != "" {
				m.current = ev.CurrentPackage
			}
			m.log = append(m.log, ev.Message)
			if len(m.log) > maxLogLines {
				m.log = m.log[len(m.log)-maxLogLines:]
			}
		case scanner.EventComplete:
			m.Result = ev.Result
			m.percent = 1
			m.done = true
			return m, tea.Quit
		case scanner.EventError:
			m.Err = ev.Message
			m.done = true
			return m, tea.Quit
		}
		return m, waitForEvent(m.Events)

	case streamClosedMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ScanModel) View() string {
	if m.Quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("DEPSCAN "+m.Repo) + "\n\n")

	if m.Err != "" {
		s.WriteString(errorStyle.Render("Scan failed: "+m.Err) + "\n")
		return s.String()
	}

	if m.done && m.Result != nil {
		s.WriteString(successStyle.Render("Scan complete") + "\n\n")
		s.WriteString(SummaryView(m.Result))
		return s.String()
	}

	s.WriteString(m.spinner.View() + " " + statusStyle.Render(m.message) + "\n")
	if m.current != "" {
		s.WriteString("  " + fileStyle.Render(m.current) + "\n")
	}
	s.WriteString("\n" + m.progress.ViewAs(m.percent) + "\n")

	for _, line := range m.log {
		s.WriteString(statusStyle.Render("  "+line) + "\n")
	}
	s.WriteString(helpStyle.Render("(q) quit"))
	return s.String()
}

// SummaryView renders the final counters and the vulnerability list.
func SummaryView(result *scanner.Result) string {
	var s strings.Builder
	sum := result.Summary

	fmt.Fprintf(&s, "Dependencies: %d  Vulnerable: %d  Advisories: %d\n",
		sum.TotalDependencies, sum.VulnerableDependencies, sum.TotalVulnerabilities)
	fmt.Fprintf(&s, "%s %d  %s %d  %s %d  %s %d\n\n",
		criticalStyle.Render("CRITICAL"), sum.Critical,
		highStyle.Render("HIGH"), sum.High,
		mediumStyle.Render("MEDIUM"), sum.Medium,
		lowStyle.Render("LOW"), sum.Low)

	for _, v := range result.Vulnerabilities {
		fmt.Fprintf(&s, "%s %s@%s %s\n",
			SeverityStyle(v.Severity).Render(v.Severity),
			v.Package, v.Version, v.ID)
	}
	return s.String()
}
