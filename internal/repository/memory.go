package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// MemoryUserRepository keeps users in a map. It backs the server when no
// database is configured, and the test harness.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.UserRecord
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: make(map[string]models.UserRecord)}
}

// CreateUser implements the user store.
func (r *MemoryUserRepository) CreateUser(_ context.Context, rec models.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(rec.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrConflict
	}
	r.byEmail[key] = rec
	return nil
}

// UserByEmail implements the user store.
func (r *MemoryUserRepository) UserByEmail(_ context.Context, email string) (*models.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ListUsers implements the user store.
func (r *MemoryUserRepository) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]models.User, 0, len(r.byEmail))
	for _, rec := range r.byEmail {
		users = append(users, rec.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// MemoryIssueRepository keeps issues in insertion order. Deletes are
// immediate.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues []models.Issue
}

// NewMemoryIssueRepository returns an empty repository.
func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{}
}

func (r *MemoryIssueRepository) indexLocked(title string) int {
	for i, issue := range r.issues {
		if issue.Title == title {
			return i
		}
	}
	return -1
}

// ListIssues implements the issue store, newest first.
func (r *MemoryIssueRepository) ListIssues(_ context.Context) ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Issue, 0, len(r.issues))
	for i := len(r.issues) - 1; i >= 0; i-- {
		out = append(out, r.issues[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// IssueByTitle implements the issue store.
func (r *MemoryIssueRepository) IssueByTitle(_ context.Context, title string) (*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(title)
	if i < 0 {
		return nil, ErrNotFound
	}
	issue := r.issues[i]
	return &issue, nil
}

// CreateIssue implements the issue store.
func (r *MemoryIssueRepository) CreateIssue(_ context.Context, issue models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(issue.Title) >= 0 {
		return ErrConflict
	}
	if issue.Assignee != nil {
		issue.Assignee = &models.Assignee{Ref: issue.Assignee.Name()}
	}
	r.issues = append(r.issues, issue)
	return nil
}

// UpdateIssue implements the issue store.
func (r *MemoryIssueRepository) UpdateIssue(_ context.Context, title string, u models.IssueUpdate) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(title)
	if i < 0 {
		return nil, ErrNotFound
	}
	r.issues[i] = r.issues[i].Apply(u)
	issue := r.issues[i]
	return &issue, nil
}

// DeleteIssue implements the issue store.
func (r *MemoryIssueRepository) DeleteIssue(_ context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(title)
	if i < 0 {
		return ErrNotFound
	}
	r.issues = append(r.issues[:i], r.issues[i+1:]...)
	return nil
}

// CountIssues implements the issue store.
func (r *MemoryIssueRepository) CountIssues(_ context.Context) (models.IssueCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := models.IssueCounts{Total: len(r.issues)}
	for _, issue := range r.issues {
		switch issue.Status {
		case models.StatusOpen:
			c.Open++
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusResolved:
			c.Resolved++
		}
	}
	return c, nil
}
