package issues

import "github.com/atinyakov/IssueKeeper/internal/models"

// CountByStatus derives the dashboard aggregates from a full issue list.
func CountByStatus(all []models.Issue) models.IssueCounts {
	counts := models.IssueCounts{Total: len(all)}
	for _, issue := range all {
		switch issue.Status {
		case models.StatusOpen:
			counts.Open++
		case models.StatusInProgress:
			counts.InProgress++
		case models.StatusResolved:
			counts.Resolved++
		}
	}
	return counts
}

// Recent returns at most the first n issues.
func Recent(all []models.Issue, n int) []models.Issue {
	if n < 0 {
		n = 0
	}
	return all[:min(n, len(all))]
}
