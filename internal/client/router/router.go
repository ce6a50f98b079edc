// Package router maps client paths to views and decides, from the session
// state, which view a path actually resolves to.
package router

import (
	"errors"
	"net/url"
	"strings"
)

// Paths of the client's views.
const (
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathHome      = "/"
	PathDashboard = "/dashboard"
	PathIssues    = "/issues"
	PathNewIssue  = "/issues/new"
	PathProfile   = "/profile"
)

// ErrNotFound is returned by Parse for a path no view serves.
var ErrNotFound = errors.New("no such page")

// Name identifies a view.
type Name int

const (
	Login Name = iota + 1
	Signup
	Dashboard
	IssueList
	NewIssue
	IssueDetail
	Profile
)

func (n Name) String() string {
	switch n {
	case Login:
		return "Login"
	case Signup:
		return "Sign up"
	case Dashboard:
		return "Dashboard"
	case IssueList:
		return "Issues"
	case NewIssue:
		return "New issue"
	case IssueDetail:
		return "Issue"
	case Profile:
		return "Profile"
	default:
		return "Unknown"
	}
}

// Route is a parsed path.
type Route struct {
	Name Name
	// Title is set for IssueDetail.
	Title string
}

// Private reports whether the route needs a session.
func (r Route) Private() bool {
	return r.Name != Login && r.Name != Signup
}

// Path renders the canonical path of the route.
func (r Route) Path() string {
	switch r.Name {
	case Login:
		return PathLogin
	case Signup:
		return PathSignup
	case Dashboard:
		return PathHome
	case IssueList:
		return PathIssues
	case NewIssue:
		return PathNewIssue
	case IssueDetail:
		return IssuePath(r.Title)
	case Profile:
		return PathProfile
	default:
		return PathHome
	}
}

// IssuePath returns the detail path for title.
func IssuePath(title string) string {
	return PathIssues + "/" + url.PathEscape(title)
}

// Parse maps a path to its route. "/dashboard" parses as the dashboard.
func Parse(path string) (Route, error) {
	if path == "" {
		path = PathHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case PathLogin:
		return Route{Name: Login}, nil
	case PathSignup:
		return Route{Name: Signup}, nil
	case PathHome, PathDashboard:
		return Route{Name: Dashboard}, nil
	case PathIssues:
		return Route{Name: IssueList}, nil
	case PathNewIssue:
		return Route{Name: NewIssue}, nil
	case PathProfile:
		return Route{Name: Profile}, nil
	}

	rest, ok := strings.CutPrefix(path, PathIssues+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return Route{}, ErrNotFound
	}
	title, err := url.PathUnescape(rest)
	if err != nil || title == "" {
		return Route{}, ErrNotFound
	}
	return Route{Name: IssueDetail, Title: title}, nil
}
