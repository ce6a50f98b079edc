package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

// authResultMsg is the answer to a login or register call. It does not
// implement failure: a 401 here is a wrong password, not a dead session.
type authResultMsg struct {
	resp *models.AuthResponse
	err  error
}

// authView is the login form, or the signup form when signup is set.
type authView struct {
	env
	signup     bool
	form       *inputForm
	errs       map[string]string
	err        string
	submitting bool
}

func newLoginView(e env) *authView {
	form := newInputForm().
		add("Email", "email", newInput("you@example.com", false)).
		add("Password", "password", newInput("", true))
	return &authView{env: e, form: form}
}

func newSignupView(e env) *authView {
	form := newInputForm().
		add("Name", "name", newInput("Your name", false)).
		add("Email", "email", newInput("you@example.com", false)).
		add("Password", "password", newInput("at least 6 characters", true))
	return &authView{env: e, signup: true, form: form}
}

func (v *authView) Init() tea.Cmd { return nil }

func (v *authView) Capturing() bool { return true }

func (v *authView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		v.submitting = false
		if msg.err != nil {
			fallback := "Login failed."
			if v.signup {
				fallback = "Signup failed."
			}
			v.err = api.Message(msg.err, fallback)
			v.log.Info("authentication failed", zap.Bool("signup", v.signup), zap.Error(msg.err))
			return v, nil
		}
		if err := v.sessions.Login(msg.resp.Token, msg.resp.User); err != nil {
			v.err = "Could not save the session: " + err.Error()
			return v, nil
		}
		return v, navigate(router.PathHome)

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.SwitchAuth):
			if v.signup {
				return v, navigate(router.PathLogin)
			}
			return v, navigate(router.PathSignup)
		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			v.form.move(1)
			return v, nil
		case key.Matches(msg, v.keys.BackTab), msg.Type == tea.KeyUp:
			v.form.move(-1)
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if !v.form.last() {
				v.form.move(1)
				return v, nil
			}
			return v, v.submit()
		}
	}
	return v, v.form.update(msg)
}

func (v *authView) submit() tea.Cmd {
	v.err = ""
	var req any
	if v.signup {
		req = models.SignupRequest{Name: v.form.value(0), Email: v.form.value(1), Password: v.form.inputs[2].Value()}
	} else {
		req = models.LoginRequest{Email: v.form.value(0), Password: v.form.inputs[1].Value()}
	}
	if err := validate.Struct(req); err != nil {
		v.errs, _ = err.(validate.Errors)
		return nil
	}
	v.errs = nil
	v.submitting = true

	ctx, client := v.ctx, v.api
	return func() tea.Msg {
		var resp *models.AuthResponse
		var err error
		switch r := req.(type) {
		case models.SignupRequest:
			resp, err = client.Register(ctx, r)
		case models.LoginRequest:
			resp, err = client.Login(ctx, r)
		}
		return authResultMsg{resp: resp, err: err}
	}
}

func (v *authView) View() string {
	var b strings.Builder
	heading, other := "Log in", "ctrl+t: create an account"
	if v.signup {
		heading, other = "Create an account", "ctrl+t: log in instead"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(v.form.view(v.errs))
	switch {
	case v.submitting:
		b.WriteString(mutedStyle.Render("Submitting…"))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab: next field · enter: submit · " + other))
	return b.String()
}
