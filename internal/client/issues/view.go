package issues

import "github.com/atinyakov/IssueKeeper/internal/models"

// View is the issue list's derived state. The filtered sequence is
// recomputed whenever the issues or the filter change.
type View struct {
	all      []models.Issue
	filter   Filter
	page     int
	filtered []models.Issue
}

// NewView returns an empty view on page 1.
func NewView() *View {
	return &View{page: 1}
}

// SetIssues replaces the underlying issues. The page is kept when it is
// still in range and clamped otherwise.
func (v *View) SetIssues(all []models.Issue) {
	v.all = all
	v.recompute()
	v.clamp()
}

// SetFilter replaces the filter and goes back to page 1.
func (v *View) SetFilter(f Filter) {
	if f == v.filter {
		return
	}
	v.filter = f
	v.page = 1
	v.recompute()
}

// SetQuery changes the text query.
func (v *View) SetQuery(q string) {
	f := v.filter
	f.Query = q
	v.SetFilter(f)
}

// SetStatus changes the status filter.
func (v *View) SetStatus(s string) {
	f := v.filter
	f.Status = s
	v.SetFilter(f)
}

// SetPriority changes the priority filter.
func (v *View) SetPriority(p string) {
	f := v.filter
	f.Priority = p
	v.SetFilter(f)
}

// CycleStatus advances the status filter to the next choice.
func (v *View) CycleStatus() {
	v.SetStatus(Cycle(StatusOptions(), v.filter.Status))
}

// CyclePriority advances the priority filter to the next choice.
func (v *View) CyclePriority() {
	v.SetPriority(Cycle(PriorityOptions(), v.filter.Priority))
}

// Filter returns the current filter.
func (v *View) Filter() Filter { return v.filter }

// Page returns the current 1-based page.
func (v *View) Page() int { return v.page }

// Pages returns the page count of the filtered sequence.
func (v *View) Pages() int { return PageCount(len(v.filtered)) }

// Total is the number of issues before filtering.
func (v *View) Total() int { return len(v.all) }

// Count is the number of issues after filtering.
func (v *View) Count() int { return len(v.filtered) }

// Items returns the current page.
func (v *View) Items() []models.Issue { return Page(v.filtered, v.page) }

// Filtered returns every issue that passes the filter.
func (v *View) Filtered() []models.Issue { return v.filtered }

// HasNext reports whether Next would move.
func (v *View) HasNext() bool { return v.page < v.Pages() }

// HasPrev reports whether Prev would move.
func (v *View) HasPrev() bool { return v.page > 1 }

// Next moves one page forward. It reports false at the last page.
func (v *View) Next() bool {
	if !v.HasNext() {
		return false
	}
	v.page++
	return true
}

// Prev moves one page back. It reports false at page 1.
func (v *View) Prev() bool {
	if !v.HasPrev() {
		return false
	}
	v.page--
	return true
}

// Goto jumps to page. Out-of-range pages are refused.
func (v *View) Goto(page int) bool {
	if page < 1 || page > max(v.Pages(), 1) {
		return false
	}
	v.page = page
	return true
}

// Range returns the 1-based positions of the first and last item on the
// current page, for "Showing a to b of n". Both are 0 when the page is
// empty.
func (v *View) Range() (from, to int) {
	items := v.Items()
	if len(items) == 0 {
		return 0, 0
	}
	from = (v.page-1)*PageSize + 1
	return from, from + len(items) - 1
}

func (v *View) recompute() {
	v.filtered = Apply(v.all, v.filter)
}

func (v *View) clamp() {
	pages := v.Pages()
	if v.page > pages {
		v.page = max(pages, 1)
	}
	if v.page < 1 {
		v.page = 1
	}
}
