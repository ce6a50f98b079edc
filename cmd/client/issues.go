package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/issues"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

const dateLayout = "2006-01-02 15:04"

func dashboardCommand() *command {
	return &command{
		name:    "dashboard",
		usage:   "dashboard",
		summary: "Show issue counts and recent activity",
		route:   router.PathDashboard,
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
			all, err := a.api.ListIssues(ctx)
			if err != nil {
				return err
			}
			counts, err := a.api.IssueCounts(ctx)
			switch {
			case err == nil:
			case api.IsUnauthorized(err):
				return err
			default:
				a.log.Debug("counts unavailable, deriving from list", zap.Error(err))
				derived := issues.CountByStatus(all)
				counts = &derived
			}

			printFields(a.term.out, [][]string{
				{"Total", fmt.Sprint(counts.Total)},
				{"Open", fmt.Sprint(counts.Open)},
				{"In Progress", fmt.Sprint(counts.InProgress)},
				{"Resolved", fmt.Sprint(counts.Resolved)},
			})
			fmt.Fprintln(a.term.out)
			fmt.Fprintln(a.term.out, "Recent activity")
			recent := issues.Recent(all, 5)
			if len(recent) == 0 {
				fmt.Fprintln(a.term.out, "No issues yet.")
				return nil
			}
			printIssues(a.term.out, recent)
			return nil
		},
	}
}

func listCommand() *command {
	return &command{
		name:    "list",
		usage:   "list [--query TEXT] [--status STATUS] [--priority PRIORITY] [--page N]",
		summary: "List issues, filtered and paginated",
		route:   router.PathIssues,
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("query", "q", "", "match title or description")
			fs.StringP("status", "s", issues.All, "All, Open, In-Progress or Resolved")
			fs.StringP("priority", "p", issues.All, "All, High, Medium or Low")
			fs.Int("page", 1, "page to show")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			query, _ := fs.GetString("query")
			status, _ := fs.GetString("status")
			priority, _ := fs.GetString("priority")
			page, _ := fs.GetInt("page")
			var ok bool
			if status, ok = canonical(status, issues.StatusOptions()); !ok {
				return usagef("unknown status %q (want one of %s)", status, strings.Join(issues.StatusOptions(), ", "))
			}
			if priority, ok = canonical(priority, issues.PriorityOptions()); !ok {
				return usagef("unknown priority %q (want one of %s)", priority, strings.Join(issues.PriorityOptions(), ", "))
			}

			all, err := a.api.ListIssues(ctx)
			if err != nil {
				return err
			}
			view := issues.NewView()
			view.SetIssues(all)
			view.SetFilter(issues.Filter{Query: query, Status: status, Priority: priority})
			if !view.Goto(page) {
				return usagef("page %d is out of range (1-%d)", page, max(view.Pages(), 1))
			}

			if view.Count() == 0 {
				fmt.Fprintln(a.term.out, "No issues found.")
				return nil
			}
			printIssues(a.term.out, view.Items())
			from, to := view.Range()
			line := fmt.Sprintf("Showing %d to %d of %d issues", from, to, view.Count())
			if view.Count() != view.Total() {
				line += fmt.Sprintf(" (filtered from %d)", view.Total())
			}
			fmt.Fprintln(a.term.out, line)
			fmt.Fprintf(a.term.out, "Page %d of %d\n", view.Page(), view.Pages())
			return nil
		},
	}
}

func showCommand() *command {
	return &command{
		name:    "show",
		usage:   "show <title>",
		summary: "Show one issue",
		route:   router.PathIssues,
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			title := joinTitle(args)
			if title == "" {
				return usagef("show needs an issue title\nUsage: issuekeeper show <title>")
			}
			issue, err := a.api.GetIssue(ctx, title)
			if err != nil {
				return notFound(err, title)
			}
			printFields(a.term.out, [][]string{
				{"Title", issue.Title},
				{"Status", string(issue.Status)},
				{"Priority", string(issue.Priority)},
				{"Assignee", orDash(issue.Assignee.Name())},
				{"Created", issue.CreatedAt.Local().Format(dateLayout)},
			})
			fmt.Fprintln(a.term.out)
			fmt.Fprintln(a.term.out, issue.Description)
			return nil
		},
	}
}

func createCommand() *command {
	return &command{
		name:    "create",
		usage:   "create --title TITLE --description TEXT [--status STATUS] [--priority PRIORITY] [--assignee NAME]",
		summary: "Create an issue",
		route:   router.PathNewIssue,
		flags: func(fs *pflag.FlagSet) {
			defaults := models.NewIssueInput()
			fs.StringP("title", "t", "", "issue title, unique")
			fs.StringP("description", "d", "", "issue description")
			fs.StringP("status", "s", string(defaults.Status), "Open, In-Progress or Resolved")
			fs.StringP("priority", "p", string(defaults.Priority), "High, Medium or Low")
			fs.StringP("assignee", "a", "", "assignee name, empty for nobody")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := exactArgs("create", args, 0, "create --title TITLE --description TEXT"); err != nil {
				return err
			}
			title, _ := fs.GetString("title")
			description, _ := fs.GetString("description")
			status, _ := fs.GetString("status")
			priority, _ := fs.GetString("priority")
			assignee, _ := fs.GetString("assignee")
			in := models.IssueInput{
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
				Status:      models.Status(status),
				Priority:    models.Priority(priority),
				Assignee:    strings.TrimSpace(assignee),
			}
			if err := validate.Struct(in); err != nil {
				return err
			}
			issue, err := a.api.CreateIssue(ctx, in)
			if err != nil {
				return rejected(err)
			}
			fmt.Fprintf(a.term.out, "Created %q.\n", createdTitle(issue, in.Title))
			return nil
		},
	}
}

func updateCommand() *command {
	return &command{
		name:    "update",
		usage:   "update <title> [--description TEXT] [--status STATUS] [--priority PRIORITY]",
		summary: "Edit an issue's description, status or priority",
		route:   router.PathIssues,
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("description", "d", "", "new description")
			fs.StringP("status", "s", "", "new status")
			fs.StringP("priority", "p", "", "new priority")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			title := joinTitle(args)
			if title == "" {
				return usagef("update needs an issue title\nUsage: issuekeeper update <title> [flags]")
			}
			if !fs.Changed("description") && !fs.Changed("status") && !fs.Changed("priority") {
				return usagef("nothing to update: pass --description, --status or --priority")
			}

			issue, err := a.api.GetIssue(ctx, title)
			if err != nil {
				return notFound(err, title)
			}
			draft := issue.Draft()
			if fs.Changed("description") {
				d, _ := fs.GetString("description")
				draft.Description = strings.TrimSpace(d)
			}
			if fs.Changed("status") {
				s, _ := fs.GetString("status")
				draft.Status = models.Status(s)
			}
			if fs.Changed("priority") {
				p, _ := fs.GetString("priority")
				draft.Priority = models.Priority(p)
			}
			if err := validate.Struct(draft); err != nil {
				return err
			}
			if _, err := a.api.UpdateIssue(ctx, issue.Title, draft); err != nil {
				return fmt.Errorf("failed to update issue: %w", err)
			}
			fmt.Fprintf(a.term.out, "Updated %q.\n", issue.Title)
			return nil
		},
	}
}

func deleteCommand() *command {
	return &command{
		name:    "delete",
		usage:   "delete <title> [--yes]",
		summary: "Delete an issue (admins only)",
		route:   router.PathIssues,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolP("yes", "y", false, "do not ask for confirmation")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			title := joinTitle(args)
			if title == "" {
				return usagef("delete needs an issue title\nUsage: issuekeeper delete <title> [--yes]")
			}
			if s, ok := a.sessions.Snapshot(); !ok || !s.User.IsAdmin() {
				return fmt.Errorf("only admins can delete issues")
			}
			if yes, _ := fs.GetBool("yes"); !yes {
				ok, err := a.term.confirm(fmt.Sprintf("Delete %q? This cannot be undone.", title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.term.out, "Canceled.")
					return nil
				}
			}
			if err := a.api.DeleteIssue(ctx, title); err != nil {
				return fmt.Errorf("failed to delete issue: %w", notFound(err, title))
			}
			fmt.Fprintf(a.term.out, "Deleted %q.\n", title)
			return nil
		},
	}
}

func usersCommand() *command {
	return &command{
		name:    "users",
		usage:   "users",
		summary: "List users that issues can be assigned to",
		route:   router.PathNewIssue,
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
			users, err := a.api.ListUsers(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.Name, u.Email, string(u.Role)})
			}
			printTable(a.term.out, []string{"NAME", "EMAIL", "ROLE"}, rows)
			return nil
		},
	}
}

// notFound turns a 404 into a short message and leaves other errors,
// notably a 401, intact.
func notFound(err error, title string) error {
	if api.KindOf(err) == api.KindNotFound {
		return fmt.Errorf("issue %q not found", title)
	}
	return err
}

// rejected prefers the API's explanation, as in "An issue with this title
// already exists". A 401 is kept as is so the session gets cleared.
func rejected(err error) error {
	if msg := api.Message(err, ""); msg != "" && !api.IsUnauthorized(err) {
		return errors.New(msg)
	}
	return err
}

func createdTitle(issue *models.Issue, fallback string) string {
	if issue != nil && issue.Title != "" {
		return issue.Title
	}
	return fallback
}

// canonical matches v against options case-insensitively and returns the
// option's spelling.
func canonical(v string, options []string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return o, true
		}
	}
	return v, false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printIssues(w io.Writer, list []models.Issue) {
	rows := make([][]string, 0, len(list))
	for _, issue := range list {
		rows = append(rows, []string{
			issue.Title,
			string(issue.Status),
			string(issue.Priority),
			orDash(issue.Assignee.Name()),
			issue.CreatedAt.Local().Format(dateLayout),
		})
	}
	printTable(w, []string{"TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "CREATED"}, rows)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})
	fmt.Fprintln(w, t.String())
}

func printFields(w io.Writer, rows [][]string) {
	label := lipgloss.NewStyle().Bold(true).Width(12)
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", label.Render(r[0]), r[1])
	}
}
