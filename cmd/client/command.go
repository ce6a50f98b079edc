package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
)

// errNotLoggedIn is returned by private commands without a session.
var errNotLoggedIn = errors.New("not logged in (run 'issuekeeper login' first)")

// usageError marks a bad invocation, which exits with status 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// command is one subcommand.
type command struct {
	name    string
	usage   string
	summary string
	// route is the client path the command stands for. Commands with a
	// private route go through the guard like the matching view would.
	route string
	// flags declares the command's flags, nil when it takes none.
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error
}

func commands() []*command {
	return []*command{
		tuiCommand(),
		loginCommand(),
		signupCommand(),
		logoutCommand(),
		whoamiCommand(),
		dashboardCommand(),
		listCommand(),
		showCommand(),
		createCommand(),
		updateCommand(),
		deleteCommand(),
		usersCommand(),
		versionCommand(),
	}
}

func lookupCommand(name string) (*command, bool) {
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// execute parses the command's flags, loads the session, applies the
// guard and runs the command. A 401 from the API ends the stored session.
func (a *app) execute(ctx context.Context, c *command, args []string) error {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if c.flags != nil {
		c.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(a.term.out, "Usage: issuekeeper %s\n\n%s\n", c.usage, c.summary)
			if usages := fs.FlagUsages(); usages != "" {
				fmt.Fprintf(a.term.out, "\nFlags:\n%s", usages)
			}
			return nil
		}
		return usagef("%v\nUsage: issuekeeper %s", err, c.usage)
	}

	if err := a.sessions.Init(); err != nil {
		a.log.Warn("session store failed to load", zap.Error(err))
	}
	if c.route != "" {
		decision, err := a.guard.Resolve(c.route)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", c.route, err)
		}
		if decision.Redirected && decision.Route.Name == router.Login {
			return errNotLoggedIn
		}
	}

	err := c.run(ctx, a, fs, fs.Args())
	if api.IsUnauthorized(err) {
		if logoutErr := a.sessions.Logout(); logoutErr != nil {
			a.log.Error("failed to clear session", zap.Error(logoutErr))
		}
		return errors.New("your session has expired, please log in again")
	}
	return err
}

// exactArgs checks the positional argument count.
func exactArgs(c string, args []string, n int, usage string) error {
	if len(args) != n {
		return usagef("%s takes %d argument(s), got %d\nUsage: issuekeeper %s", c, n, len(args), usage)
	}
	return nil
}

// joinTitle accepts a title given as several words without quotes.
func joinTitle(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
