package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// viewMsg carries a view's command result, tagged with the generation of
// the view that issued it. The root drops it when the view is gone.
type viewMsg struct {
	gen int
	msg tea.Msg
}

// navigateMsg asks the root to resolve and mount path.
type navigateMsg struct {
	path string
}

// alertMsg shows a blocking alert until dismissed.
type alertMsg struct {
	text string
}

// logoutMsg ends the session and returns to the login view.
type logoutMsg struct{}

// sessionLoadedMsg reports that the session store finished Init.
type sessionLoadedMsg struct {
	err error
}

// failure is implemented by results of calls made on behalf of a
// session. A 401 in one of them means the session is no longer valid.
type failure interface {
	failed() error
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func alert(text string) tea.Cmd {
	return func() tea.Msg { return alertMsg{text: text} }
}

// wrap tags every message cmd produces with gen. Batches are unpacked so
// their members are tagged too; root-level messages pass untouched.
func wrap(gen int, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			cmds := make([]tea.Cmd, 0, len(msg))
			for _, c := range msg {
				cmds = append(cmds, wrap(gen, c))
			}
			return tea.BatchMsg(cmds)
		case navigateMsg, alertMsg, logoutMsg, tea.QuitMsg:
			return msg
		default:
			return viewMsg{gen: gen, msg: msg}
		}
	}
}
