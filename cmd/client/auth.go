package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/client/tui"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

func tuiCommand() *command {
	return &command{
		name:    "tui",
		usage:   "tui [path]",
		summary: "Open the terminal UI (default command)",
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			start := router.PathHome
			if len(args) > 0 {
				start = args[0]
			}
			model := tui.New(tui.Config{
				API:       a.api,
				Sessions:  a.sessions,
				Log:       a.log,
				StartPath: start,
			})
			a.log.Info("starting terminal UI", zap.String("path", start))
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}

func loginCommand() *command {
	return &command{
		name:    "login",
		usage:   "login [--email EMAIL] [--password PASSWORD]",
		summary: "Log in and store the session",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("email", "e", "", "account email (prompted when empty)")
			fs.StringP("password", "p", "", "password (prompted when empty)")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			email, _ := fs.GetString("email")
			password, _ := fs.GetString("password")
			var err error
			if email, err = a.term.valueOrPrompt(email, "Email: ", false); err != nil {
				return err
			}
			if password, err = a.term.valueOrPrompt(password, "Password: ", true); err != nil {
				return err
			}

			req := models.LoginRequest{Email: email, Password: password}
			if err := validate.Struct(req); err != nil {
				return err
			}
			resp, err := a.api.Login(ctx, req)
			if err != nil {
				return authFailure(err, "login failed")
			}
			return a.storeSession(resp)
		},
	}
}

func signupCommand() *command {
	return &command{
		name:    "signup",
		usage:   "signup [--name NAME] [--email EMAIL] [--password PASSWORD]",
		summary: "Create an account and log in",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("name", "n", "", "display name (prompted when empty)")
			fs.StringP("email", "e", "", "account email (prompted when empty)")
			fs.StringP("password", "p", "", "password, at least 6 characters (prompted when empty)")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			name, _ := fs.GetString("name")
			email, _ := fs.GetString("email")
			password, _ := fs.GetString("password")
			var err error
			if name, err = a.term.valueOrPrompt(name, "Name: ", false); err != nil {
				return err
			}
			if email, err = a.term.valueOrPrompt(email, "Email: ", false); err != nil {
				return err
			}
			if password, err = a.term.valueOrPrompt(password, "Password: ", true); err != nil {
				return err
			}

			req := models.SignupRequest{Name: name, Email: email, Password: password}
			if err := validate.Struct(req); err != nil {
				return err
			}
			resp, err := a.api.Register(ctx, req)
			if err != nil {
				return authFailure(err, "signup failed")
			}
			return a.storeSession(resp)
		},
	}
}

// authFailure flattens err so a 401 reads as wrong credentials rather
// than as an expired session.
func authFailure(err error, fallback string) error {
	if msg := api.Message(err, ""); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %v", fallback, err)
}

func (a *app) storeSession(resp *models.AuthResponse) error {
	if err := a.sessions.Login(resp.Token, resp.User); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	fmt.Fprintf(a.term.out, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
	return nil
}

func logoutCommand() *command {
	return &command{
		name:    "logout",
		usage:   "logout",
		summary: "Forget the stored session",
		run: func(_ context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
			if err := a.sessions.Logout(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(a.term.out, "Logged out.")
			return nil
		},
	}
}

func whoamiCommand() *command {
	return &command{
		name:    "whoami",
		usage:   "whoami",
		summary: "Show the logged-in user",
		route:   router.PathProfile,
		run: func(_ context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
			s, ok := a.sessions.Snapshot()
			if !ok {
				return errNotLoggedIn
			}
			rows := [][]string{
				{"Name", s.User.Name},
				{"Email", s.User.Email},
				{"Role", string(s.User.Role)},
				{"ID", s.User.ID},
			}
			if exp, ok := a.sessions.ExpiresAt(); ok {
				rows = append(rows, []string{"Expires", exp.Local().Format(time.RFC1123)})
			}
			printFields(a.term.out, rows)
			return nil
		},
	}
}

func versionCommand() *command {
	return &command{
		name:    "version",
		usage:   "version",
		summary: "Show build version and date",
		run: func(_ context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
			fmt.Fprintf(a.term.out, "IssueKeeper client\nVersion: %s\nBuild date: %s\n",
				cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
			return nil
		},
	}
}
