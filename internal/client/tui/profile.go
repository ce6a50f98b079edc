package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// profileView renders the session identity. It makes no request.
type profileView struct {
	env
}

func newProfileView(e env) *profileView {
	return &profileView{env: e}
}

func (v *profileView) Init() tea.Cmd { return nil }

func (v *profileView) Capturing() bool { return false }

func (v *profileView) Update(tea.Msg) (view, tea.Cmd) { return v, nil }

func (v *profileView) View() string {
	s, ok := v.sessions.Snapshot()
	if !ok {
		return mutedStyle.Render("Not logged in.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile"))
	b.WriteString("\n")
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), value))
	}
	row("Name", s.User.Name)
	row("Email", s.User.Email)
	row("Role", string(s.User.Role))
	row("ID", s.User.ID)
	if exp, ok := v.sessions.ExpiresAt(); ok {
		row("Expires", exp.Local().Format(time.RFC1123))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("5: log out"))
	return b.String()
}
