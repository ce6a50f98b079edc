package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/issues"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/models"
)

const recentCount = 5

type issuesLoadedMsg struct {
	issues []models.Issue
	err    error
}

func (m issuesLoadedMsg) failed() error { return m.err }

type countsLoadedMsg struct {
	counts *models.IssueCounts
	err    error
}

func (m countsLoadedMsg) failed() error { return m.err }

func loadIssues(e env) tea.Cmd {
	return func() tea.Msg {
		list, err := e.api.ListIssues(e.ctx)
		return issuesLoadedMsg{issues: list, err: err}
	}
}

func loadCounts(e env) tea.Cmd {
	return func() tea.Msg {
		counts, err := e.api.IssueCounts(e.ctx)
		return countsLoadedMsg{counts: counts, err: err}
	}
}

// dashboardView shows aggregate counts and the most recent issues. Counts
// come from the API when it has the endpoint and are derived from the
// issue list otherwise.
type dashboardView struct {
	env
	loadingIssues bool
	loadingCounts bool
	all           []models.Issue
	counts        *models.IssueCounts
	derive        bool
	err           string
	cursor        int
}

func newDashboardView(e env) *dashboardView {
	return &dashboardView{env: e}
}

func (v *dashboardView) Init() tea.Cmd {
	v.loadingIssues, v.loadingCounts = true, true
	return tea.Batch(loadIssues(v.env), loadCounts(v.env))
}

func (v *dashboardView) Capturing() bool { return false }

func (v *dashboardView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case issuesLoadedMsg:
		v.loadingIssues = false
		if msg.err != nil {
			v.log.Error("failed to load issues", zap.Error(msg.err))
			v.err = "Failed to load issues."
			return v, nil
		}
		v.all = msg.issues
		v.cursor = min(v.cursor, max(len(v.recent())-1, 0))

	case countsLoadedMsg:
		v.loadingCounts = false
		switch {
		case msg.err == nil:
			v.counts = msg.counts
		case api.KindOf(msg.err) == api.KindNotFound:
			v.log.Debug("counts endpoint unavailable, deriving from list")
			v.derive = true
		default:
			v.log.Error("failed to load counts", zap.Error(msg.err))
			v.derive = true
		}

	case tea.KeyMsg:
		recent := v.recent()
		switch {
		case key.Matches(msg, v.keys.Refresh):
			v.err = ""
			return v, v.Init()
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(recent)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Enter):
			if v.cursor < len(recent) {
				return v, navigate(router.IssuePath(recent[v.cursor].Title))
			}
		}
	}
	return v, nil
}

func (v *dashboardView) recent() []models.Issue {
	return issues.Recent(v.all, recentCount)
}

// stats returns the counts to show, and false while they are unknown.
func (v *dashboardView) stats() (models.IssueCounts, bool) {
	if v.counts != nil {
		return *v.counts, true
	}
	if v.derive && !v.loadingIssues && v.err == "" {
		return issues.CountByStatus(v.all), true
	}
	return models.IssueCounts{}, false
}

func (v *dashboardView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n")

	counts, ok := v.stats()
	card := func(label string, n int, color lipgloss.Color) string {
		value := "…"
		if ok {
			value = fmt.Sprint(n)
		}
		return cardStyle.Render(labelStyle.Render(label) + "\n" + lipgloss.NewStyle().Foreground(color).Bold(true).Render(value))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", counts.Total, colorFg),
		card("Open", counts.Open, colorBlue),
		card("In Progress", counts.InProgress, colorYellow),
		card("Resolved", counts.Resolved, colorGreen),
	))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Recent activity"))
	b.WriteString("\n")
	switch {
	case v.loadingIssues:
		b.WriteString(mutedStyle.Render("Loading…"))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	case len(v.all) == 0:
		b.WriteString(mutedStyle.Render("No issues yet."))
	default:
		for i, issue := range v.recent() {
			line := fmt.Sprintf("%-32s %s  %s", truncate(issue.Title, 32),
				statusStyle(string(issue.Status)).Render(string(issue.Status)),
				priorityStyle(string(issue.Priority)).Render(string(issue.Priority)))
			if i == v.cursor {
				line = selectedStyle.Render("▸ ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter: open · r: refresh"))
	return b.String()
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
