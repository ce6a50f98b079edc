package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/issues"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
)

// listView is the issue table with search, status and priority filters and
// pagination. The fetched list is the only issue cache the client keeps.
type listView struct {
	env
	pipeline  *issues.View
	search    textinput.Model
	searching bool
	loading   bool
	err       string
	cursor    int
}

func newListView(e env) *listView {
	return &listView{
		env:      e,
		pipeline: issues.NewView(),
		search:   newInput("title or description", false),
	}
}

func (v *listView) Init() tea.Cmd {
	v.loading = true
	return loadIssues(v.env)
}

func (v *listView) Capturing() bool { return v.searching }

func (v *listView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case issuesLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.log.Error("failed to load issues", zap.Error(msg.err))
			v.err = "Failed to load issues."
			v.pipeline.SetIssues(nil)
			return v, nil
		}
		v.err = ""
		v.pipeline.SetIssues(msg.issues)
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		if v.searching {
			return v, v.updateSearch(msg)
		}
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *listView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, v.keys.Enter, v.keys.Back) {
		v.searching = false
		v.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.pipeline.SetQuery(v.search.Value())
	v.cursor = 0
	return cmd
}

func (v *listView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Search):
		v.searching = true
		return v.search.Focus()
	case key.Matches(msg, v.keys.Status):
		v.pipeline.CycleStatus()
		v.cursor = 0
	case key.Matches(msg, v.keys.Priority):
		v.pipeline.CyclePriority()
		v.cursor = 0
	case key.Matches(msg, v.keys.Clear):
		v.search.SetValue("")
		v.pipeline.SetFilter(issues.Filter{})
		v.cursor = 0
	case key.Matches(msg, v.keys.Left):
		if v.pipeline.Prev() {
			v.cursor = 0
		}
	case key.Matches(msg, v.keys.Right):
		if v.pipeline.Next() {
			v.cursor = 0
		}
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.pipeline.Items())-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Enter):
		items := v.pipeline.Items()
		if v.cursor < len(items) {
			return navigate(router.IssuePath(items[v.cursor].Title))
		}
	case key.Matches(msg, v.keys.Create):
		return navigate(router.PathNewIssue)
	case key.Matches(msg, v.keys.Refresh):
		return v.Init()
	}
	return nil
}

func (v *listView) clampCursor() {
	v.cursor = min(v.cursor, max(len(v.pipeline.Items())-1, 0))
}

func (v *listView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("\n")

	f := v.pipeline.Filter()
	search := v.search.View()
	if !v.searching && v.search.Value() == "" {
		search = mutedStyle.Render("/ to search")
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		labelStyle.Render("Search:"), search,
		labelStyle.Render("Status:"), orAll(f.Status),
		labelStyle.Render("Priority:"), orAll(f.Priority),
	))

	switch {
	case v.loading:
		b.WriteString(mutedStyle.Render("Loading…"))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	case v.pipeline.Count() == 0:
		b.WriteString(mutedStyle.Render("No issues found."))
	default:
		b.WriteString(v.table())
		b.WriteString("\n")
		from, to := v.pipeline.Range()
		line := fmt.Sprintf("Showing %d to %d of %d issues", from, to, v.pipeline.Count())
		if v.pipeline.Count() != v.pipeline.Total() {
			line += fmt.Sprintf(" (filtered from %d)", v.pipeline.Total())
		}
		b.WriteString(mutedStyle.Render(line))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d", v.pipeline.Page(), v.pipeline.Pages())))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("/ search · s status · p priority · c clear · ←/→ page · enter open · n new · r refresh"))
	return b.String()
}

func (v *listView) table() string {
	items := v.pipeline.Items()
	rows := make([][]string, 0, len(items))
	for _, issue := range items {
		rows = append(rows, []string{
			truncate(issue.Title, 32),
			string(issue.Status),
			string(issue.Priority),
			issue.Assignee.Name(),
			issue.CreatedAt.Format("2006-01-02"),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "CREATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Bold(true).Foreground(colorMuted)
			case row == v.cursor:
				return style.Foreground(colorBlue).Bold(true)
			case col == 1:
				return style.Inherit(statusStyle(rows[row][1]))
			case col == 2:
				return style.Inherit(priorityStyle(rows[row][2]))
			}
			return style
		}).
		String()
}

func orAll(v string) string {
	if v == "" {
		return issues.All
	}
	return v
}
