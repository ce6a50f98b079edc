// Package main is the issuekeeper client: a terminal UI over the issue
// API plus one-shot subcommands for scripting.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/client/session"
	"github.com/atinyakov/IssueKeeper/internal/client/storage"
	"github.com/atinyakov/IssueKeeper/internal/config"
	"github.com/atinyakov/IssueKeeper/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], envconfig.OsLookuper(), newTerminal(os.Stdin, os.Stdout, os.Stderr))
	stop()
	os.Exit(code)
}

// app is what every command runs against.
type app struct {
	opts     *config.Options
	log      *zap.Logger
	api      *api.Client
	sessions *session.Store
	guard    *router.Guard
	term     *terminal
}

// run parses the global flags, builds the app and dispatches the command.
// It returns the process exit code.
func run(ctx context.Context, args []string, lookup envconfig.Lookuper, t *terminal) int {
	fs := config.NewFlagSet("issuekeeper")
	fs.SetOutput(io.Discard)
	opts, rest, err := config.Parse(fs, args, lookup)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(t.out, fs)
			return 0
		}
		fmt.Fprintf(t.err, "issuekeeper: %v\n", err)
		return 2
	}
	if help, _ := fs.GetBool("help"); help {
		printUsage(t.out, fs)
		return 0
	}
	if v, _ := fs.GetBool("version"); v {
		rest = []string{"version"}
	}

	name := "tui"
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(t.err, "issuekeeper: unknown command %q\n\nRun 'issuekeeper --help' for usage.\n", name)
		return 2
	}

	a, err := newApp(opts, cmd.name == "tui", t)
	if err != nil {
		fmt.Fprintf(t.err, "issuekeeper: %v\n", err)
		return 1
	}
	defer func() { _ = a.log.Sync() }()

	if err := a.execute(ctx, cmd, rest); err != nil {
		a.log.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
		fmt.Fprintf(t.err, "issuekeeper %s: %v\n", cmd.name, err)
		var usage usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

// newApp wires logging, the session store and the API client. The TUI owns
// the terminal, so it logs to a file; subcommands log warnings to stderr.
func newApp(opts *config.Options, interactive bool, t *terminal) (*app, error) {
	log := logger.New()
	level, paths := "warn", []string(nil)
	if interactive {
		level, paths = opts.LogLevel, []string{opts.LogFile}
	}
	if err := log.Init(level, paths...); err != nil {
		return nil, err
	}

	httpClient, err := api.NewHTTPClient(opts.CAFile, opts.Timeout)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(storage.New(opts.SessionFile), log.Log)
	client := api.New(opts.BaseURL,
		api.WithHTTPClient(httpClient),
		api.WithCredentials(sessions),
		api.WithLogger(log.Log),
		api.WithAuthPaths(opts.LoginPath, opts.RegisterPath),
	)
	return &app{
		opts:     opts,
		log:      log.Log,
		api:      client,
		sessions: sessions,
		guard:    router.NewGuard(sessions),
		term:     t,
	}, nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: issuekeeper [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
