// Package issues derives what the issue list shows from the full set of
// issues fetched once per visit: a filter, fixed-size pages, and the
// dashboard aggregates.
package issues

import (
	"strings"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// All is the filter value that matches every status or priority.
const All = "All"

// PageSize is the number of issues on one page.
const PageSize = 5

// Filter is the conjunction of a text query, a status and a priority.
type Filter struct {
	// Query matches title or description, case-insensitively.
	Query string
	// Status is an exact status, or All / "" for any.
	Status string
	// Priority is an exact priority, or All / "" for any.
	Priority string
}

// Match reports whether issue satisfies all three predicates.
func (f Filter) Match(issue models.Issue) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(issue.Title), q) &&
			!strings.Contains(strings.ToLower(issue.Description), q) {
			return false
		}
	}
	if !isAll(f.Status) && string(issue.Status) != f.Status {
		return false
	}
	if !isAll(f.Priority) && string(issue.Priority) != f.Priority {
		return false
	}
	return true
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Query == "" && isAll(f.Status) && isAll(f.Priority)
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Apply returns the issues matching f, in input order.
func Apply(all []models.Issue, f Filter) []models.Issue {
	out := make([]models.Issue, 0, len(all))
	for _, issue := range all {
		if f.Match(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// PageCount returns ceil(n / PageSize).
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Page returns the 1-based page of items. Pages outside the range are
// empty.
func Page(items []models.Issue, page int) []models.Issue {
	if page < 1 {
		return nil
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return nil
	}
	end := min(start+PageSize, len(items))
	return items[start:end]
}

// StatusOptions returns the status filter choices, All first.
func StatusOptions() []string {
	opts := []string{All}
	for _, s := range models.Statuses {
		opts = append(opts, string(s))
	}
	return opts
}

// PriorityOptions returns the priority filter choices, All first.
func PriorityOptions() []string {
	opts := []string{All}
	for _, p := range models.Priorities {
		opts = append(opts, string(p))
	}
	return opts
}

// Cycle returns the option after current, wrapping around. An unknown
// current value starts over at the first option.
func Cycle(options []string, current string) string {
	if len(options) == 0 {
		return current
	}
	if current == "" {
		current = All
	}
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
