package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

type issueLoadedMsg struct {
	issue *models.Issue
	err   error
}

func (m issueLoadedMsg) failed() error { return m.err }

type issueUpdatedMsg struct {
	draft models.IssueUpdate
	err   error
}

func (m issueUpdatedMsg) failed() error { return m.err }

type issueDeletedMsg struct {
	err error
}

func (m issueDeletedMsg) failed() error { return m.err }

// Focus positions in the edit form.
const (
	editDescription = iota
	editStatus
	editPriority
	editFields
)

// detailView shows one issue and hosts its edit and delete actions.
type detailView struct {
	env
	title string

	loading bool
	err     string
	issue   *models.Issue

	editing     bool
	focus       int
	description textarea.Model
	status      selector
	priority    selector
	errs        map[string]string
	saving      bool

	confirming bool
	deleting   bool
	notice     string
}

func newDetailView(e env, title string) *detailView {
	return &detailView{env: e, title: title}
}

func (v *detailView) Init() tea.Cmd {
	v.loading = true
	e, title := v.env, v.title
	return func() tea.Msg {
		issue, err := e.api.GetIssue(e.ctx, title)
		return issueLoadedMsg{issue: issue, err: err}
	}
}

func (v *detailView) Capturing() bool {
	return v.editing || v.confirming
}

func (v *detailView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case issueLoadedMsg:
		v.loading = false
		switch {
		case msg.err == nil:
			v.issue = msg.issue
		case api.KindOf(msg.err) == api.KindNotFound:
			v.err = "Issue not found."
		default:
			v.log.Error("failed to load issue", zap.String("title", v.title), zap.Error(msg.err))
			v.err = "Failed to load issue."
		}
		return v, nil

	case issueUpdatedMsg:
		v.saving = false
		if msg.err != nil {
			v.log.Error("failed to update issue", zap.String("title", v.title), zap.Error(msg.err))
			return v, alert("Failed to update issue.")
		}
		merged := v.issue.Apply(msg.draft)
		v.issue = &merged
		v.editing = false
		v.notice = "Issue updated."
		return v, nil

	case issueDeletedMsg:
		v.deleting = false
		if msg.err != nil {
			v.log.Error("failed to delete issue", zap.String("title", v.title), zap.Error(msg.err))
			return v, alert("Failed to delete issue.")
		}
		return v, navigate(router.PathIssues)

	case tea.KeyMsg:
		v.notice = ""
		switch {
		case v.confirming:
			return v, v.updateConfirm(msg)
		case v.editing:
			return v, v.updateEdit(msg)
		default:
			return v, v.handleKey(msg)
		}
	}
	return v, nil
}

func (v *detailView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		return navigate(router.PathIssues)
	case v.issue == nil:
		return nil
	case key.Matches(msg, v.keys.Edit):
		return v.startEdit()
	case key.Matches(msg, v.keys.Delete):
		if s, ok := v.sessions.Snapshot(); !ok || !s.User.IsAdmin() {
			return alert("Only admins can delete issues.")
		}
		v.confirming = true
	}
	return nil
}

func (v *detailView) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case v.deleting:
		return nil
	case key.Matches(msg, v.keys.Confirm):
		v.confirming = false
		v.deleting = true
		e, title := v.env, v.issue.Title
		return func() tea.Msg {
			return issueDeletedMsg{err: e.api.DeleteIssue(e.ctx, title)}
		}
	case key.Matches(msg, v.keys.Deny):
		v.confirming = false
	}
	return nil
}

func (v *detailView) startEdit() tea.Cmd {
	draft := v.issue.Draft()
	v.editing = true
	v.errs = nil
	v.focus = editDescription
	v.description = newTextArea("Describe the issue")
	v.description.SetValue(draft.Description)
	v.status = newSelector(statusChoices(), string(draft.Status))
	v.priority = newSelector(priorityChoices(), string(draft.Priority))
	return v.description.Focus()
}

func (v *detailView) draft() models.IssueUpdate {
	return models.IssueUpdate{
		Description: strings.TrimSpace(v.description.Value()),
		Status:      models.Status(v.status.value()),
		Priority:    models.Priority(v.priority.value()),
	}
}

func (v *detailView) updateEdit(msg tea.KeyMsg) tea.Cmd {
	if v.saving {
		return nil
	}
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return nil
	case key.Matches(msg, v.keys.Save):
		draft := v.draft()
		if err := validate.Struct(draft); err != nil {
			v.errs, _ = err.(validate.Errors)
			return nil
		}
		v.saving = true
		e, title := v.env, v.issue.Title
		return func() tea.Msg {
			_, err := e.api.UpdateIssue(e.ctx, title, draft)
			return issueUpdatedMsg{draft: draft, err: err}
		}
	case key.Matches(msg, v.keys.Tab):
		return v.moveFocus(1)
	case key.Matches(msg, v.keys.BackTab):
		return v.moveFocus(-1)
	}

	switch v.focus {
	case editDescription:
		var cmd tea.Cmd
		v.description, cmd = v.description.Update(msg)
		return cmd
	case editStatus:
		v.status.step(stepFor(msg))
	case editPriority:
		v.priority.step(stepFor(msg))
	}
	return nil
}

func (v *detailView) moveFocus(delta int) tea.Cmd {
	v.focus = (v.focus + delta + editFields) % editFields
	if v.focus == editDescription {
		return v.description.Focus()
	}
	v.description.Blur()
	return nil
}

// stepFor maps left/right (and h/l) to a selector step.
func stepFor(msg tea.KeyMsg) int {
	switch msg.String() {
	case "left", "h":
		return -1
	case "right", "l", " ":
		return 1
	}
	return 0
}

func (v *detailView) View() string {
	var b strings.Builder
	switch {
	case v.loading:
		return mutedStyle.Render("Loading…")
	case v.err != "":
		return errorStyle.Render(v.err) + "\n\n" + mutedStyle.Render("esc: back to issues")
	case v.issue == nil:
		return ""
	}

	issue := v.issue
	b.WriteString(titleStyle.Render(issue.Title))
	b.WriteString("\n")

	if v.editing {
		b.WriteString(v.editView())
	} else {
		row := func(label, value string) {
			b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), value))
		}
		row("Status", statusStyle(string(issue.Status)).Render(string(issue.Status)))
		row("Priority", priorityStyle(string(issue.Priority)).Render(string(issue.Priority)))
		row("Assignee", orDash(issue.Assignee.Name()))
		row("Created", issue.CreatedAt.Local().Format("2006-01-02 15:04"))
		b.WriteString("\n")
		b.WriteString(issue.Description)
		b.WriteString("\n\n")
		if v.notice != "" {
			b.WriteString(noticeStyle.Render(v.notice))
			b.WriteString("\n")
		}
		help := "e: edit · esc: back"
		if s, ok := v.sessions.Snapshot(); ok && s.User.IsAdmin() {
			help = "e: edit · d: delete · esc: back"
		}
		b.WriteString(mutedStyle.Render(help))
	}

	if v.confirming || v.deleting {
		b.WriteString("\n\n")
		text := fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", issue.Title)
		if v.deleting {
			text = "Deleting…"
		}
		b.WriteString(confirmStyle.Render(text))
	}
	return b.String()
}

func (v *detailView) editView() string {
	var b strings.Builder
	label := func(text string, focus int) string {
		if v.focus == focus {
			return selectedStyle.Render(text)
		}
		return labelStyle.Render(text)
	}
	b.WriteString(label("Description", editDescription))
	b.WriteString("\n")
	b.WriteString(v.description.View())
	b.WriteString("\n")
	if msg := v.errs["description"]; msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString(label("Status", editStatus) + " " + v.status.view(v.focus == editStatus, nil) + "\n")
	b.WriteString(label("Priority", editPriority) + " " + v.priority.view(v.focus == editPriority, nil) + "\n\n")
	if v.saving {
		b.WriteString(mutedStyle.Render("Saving…"))
	} else {
		b.WriteString(mutedStyle.Render("tab: next field · ←/→: change · ctrl+s: save · esc: cancel"))
	}
	return b.String()
}

func statusChoices() []string {
	out := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		out = append(out, string(s))
	}
	return out
}

func priorityChoices() []string {
	out := make([]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		out = append(out, string(p))
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
