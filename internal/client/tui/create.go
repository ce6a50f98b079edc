package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

type usersLoadedMsg struct {
	users []models.User
	err   error
}

func (m usersLoadedMsg) failed() error { return m.err }

type issueCreatedMsg struct {
	err error
}

func (m issueCreatedMsg) failed() error { return m.err }

// Focus positions in the create form.
const (
	createTitle = iota
	createDescription
	createStatus
	createPriority
	createAssignee
	createFields
)

// createView is the new-issue form. Assignees are picked from the user
// directory and sent by name.
type createView struct {
	env
	title       textinput.Model
	description textarea.Model
	status      selector
	priority    selector
	assignee    selector
	focus       int

	errs       map[string]string
	err        string
	submitting bool
}

func newCreateView(e env) *createView {
	defaults := models.NewIssueInput()
	v := &createView{
		env:         e,
		title:       newInput("Short summary", false),
		description: newTextArea("What happened?"),
		status:      newSelector(statusChoices(), string(defaults.Status)),
		priority:    newSelector(priorityChoices(), string(defaults.Priority)),
		assignee:    newSelector([]string{""}, ""),
	}
	v.title.Focus()
	return v
}

func (v *createView) Init() tea.Cmd {
	e := v.env
	return func() tea.Msg {
		users, err := e.api.ListUsers(e.ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (v *createView) Capturing() bool {
	return v.focus == createTitle || v.focus == createDescription
}

func (v *createView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		if msg.err != nil {
			v.log.Warn("failed to load users for the assignee picker", zap.Error(msg.err))
			return v, nil
		}
		names := []string{""}
		for _, u := range msg.users {
			names = append(names, u.Name)
		}
		v.assignee = newSelector(names, v.assignee.value())
		return v, nil

	case issueCreatedMsg:
		v.submitting = false
		if msg.err != nil {
			v.log.Error("failed to create issue", zap.Error(msg.err))
			v.err = createError(msg.err)
			return v, nil
		}
		return v, navigate(router.PathIssues)

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, navigate(router.PathIssues)
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case key.Matches(msg, v.keys.Tab):
			return v, v.moveFocus(1)
		case key.Matches(msg, v.keys.BackTab):
			return v, v.moveFocus(-1)
		case key.Matches(msg, v.keys.Enter) && v.focus != createDescription:
			if v.focus == createFields-1 {
				return v, v.submit()
			}
			return v, v.moveFocus(1)
		}
		return v, v.updateField(msg)
	}
	return v, nil
}

func (v *createView) updateField(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch v.focus {
	case createTitle:
		v.title, cmd = v.title.Update(msg)
	case createDescription:
		v.description, cmd = v.description.Update(msg)
	case createStatus:
		v.status.step(stepFor(msg))
	case createPriority:
		v.priority.step(stepFor(msg))
	case createAssignee:
		v.assignee.step(stepFor(msg))
	}
	return cmd
}

func (v *createView) moveFocus(delta int) tea.Cmd {
	v.title.Blur()
	v.description.Blur()
	v.focus = (v.focus + delta + createFields) % createFields
	switch v.focus {
	case createTitle:
		return v.title.Focus()
	case createDescription:
		return v.description.Focus()
	}
	return nil
}

func (v *createView) input() models.IssueInput {
	return models.IssueInput{
		Title:       strings.TrimSpace(v.title.Value()),
		Description: strings.TrimSpace(v.description.Value()),
		Status:      models.Status(v.status.value()),
		Priority:    models.Priority(v.priority.value()),
		Assignee:    v.assignee.value(),
	}
}

func (v *createView) submit() tea.Cmd {
	v.err = ""
	in := v.input()
	if err := validate.Struct(in); err != nil {
		v.errs, _ = err.(validate.Errors)
		return nil
	}
	v.errs = nil
	v.submitting = true
	e := v.env
	return func() tea.Msg {
		_, err := e.api.CreateIssue(e.ctx, in)
		return issueCreatedMsg{err: err}
	}
}

// createError picks the text for a failed create: the API's message, the
// transport failure, or a generic line.
func createError(err error) string {
	if msg := api.Message(err, ""); msg != "" {
		return msg
	}
	if api.KindOf(err) == api.KindTransport {
		return err.Error()
	}
	return "Failed to create issue."
}

func (v *createView) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New issue"))
	b.WriteString("\n")

	label := func(text string, focus int) string {
		if v.focus == focus {
			return selectedStyle.Render(text)
		}
		return labelStyle.Render(text)
	}
	fieldErr := func(name string) {
		if msg := v.errs[name]; msg != "" {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString(label("Title", createTitle) + "\n" + v.title.View() + "\n")
	fieldErr("title")
	b.WriteString("\n")
	b.WriteString(label("Description", createDescription) + "\n" + v.description.View() + "\n")
	fieldErr("description")
	b.WriteString("\n")
	b.WriteString(label("Status  ", createStatus) + " " + v.status.view(v.focus == createStatus, nil) + "\n")
	b.WriteString(label("Priority", createPriority) + " " + v.priority.view(v.focus == createPriority, nil) + "\n")
	b.WriteString(label("Assignee", createAssignee) + " " + v.assignee.view(v.focus == createAssignee, func(s string) string {
		if s == "" {
			return "Unassigned"
		}
		return s
	}) + "\n\n")

	switch {
	case v.submitting:
		b.WriteString(mutedStyle.Render("Creating…"))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab: next field · ←/→: change · ctrl+s: create · esc: cancel"))
	return b.String()
}
