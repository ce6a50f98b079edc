package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	require.NoError(t, r.CreateUser(ctx, models.UserRecord{User: models.User{ID: "2", Name: "Bob", Email: "bob@example.com"}}))
	require.NoError(t, r.CreateUser(ctx, models.UserRecord{User: models.User{ID: "1", Name: "Ann", Email: "Ann@Example.com"}}))
	assert.ErrorIs(t, r.CreateUser(ctx, models.UserRecord{User: models.User{Email: "ann@example.com"}}), ErrConflict)

	rec, err := r.UserByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)

	_, err = r.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ann", users[0].Name)
}

func TestMemoryIssueRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryIssueRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"A", "B", "C"} {
		require.NoError(t, r.CreateIssue(ctx, models.Issue{
			ID: title, Title: title, Status: models.Statuses[i], Priority: models.PriorityLow,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	assert.ErrorIs(t, r.CreateIssue(ctx, models.Issue{Title: "A"}), ErrConflict)

	list, err := r.ListIssues(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Title, "newest first")

	updated, err := r.UpdateIssue(ctx, "A", models.IssueUpdate{Description: "d", Status: models.StatusResolved, Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)

	counts, err := r.CountIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.IssueCounts{Total: 3, Open: 0, InProgress: 1, Resolved: 2}, counts)

	require.NoError(t, r.DeleteIssue(ctx, "B"))
	assert.True(t, errors.Is(r.DeleteIssue(ctx, "B"), ErrNotFound))
	_, err = r.IssueByTitle(ctx, "B")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdateIssue(ctx, "B", models.IssueUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	// A freed title can be reused.
	require.NoError(t, r.CreateIssue(ctx, models.Issue{Title: "B"}))
}
