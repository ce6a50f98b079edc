package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

var (
	// ErrIssueNotFound is returned for a title with no live issue.
	ErrIssueNotFound = errors.New("issue not found")
	// ErrIssueExists is returned when a live issue already has the title.
	ErrIssueExists = errors.New("an issue with this title already exists")
	// ErrForbidden is returned when a non-admin deletes.
	ErrForbidden = errors.New("only admins can delete issues")
)

// IssueRepository defines the persistence operations required by IssueService.
type IssueRepository interface {
	ListIssues(ctx context.Context) ([]models.Issue, error)
	IssueByTitle(ctx context.Context, title string) (*models.Issue, error)
	CreateIssue(ctx context.Context, issue models.Issue) error
	UpdateIssue(ctx context.Context, title string, u models.IssueUpdate) (*models.Issue, error)
	DeleteIssue(ctx context.Context, title string) error
	CountIssues(ctx context.Context) (models.IssueCounts, error)
}

// UserLister resolves assignee names to users.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// IssueService implements the issue endpoints' rules.
type IssueService struct {
	repo  IssueRepository
	users UserLister
	now   func() time.Time
}

// NewIssueService constructs an IssueService.
func NewIssueService(repo IssueRepository, users UserLister) *IssueService {
	return &IssueService{repo: repo, users: users, now: time.Now}
}

// List returns every live issue with assignees resolved.
func (s *IssueService) List(ctx context.Context) ([]models.Issue, error) {
	issues, err := s.repo.ListIssues(ctx)
	if err != nil {
		return nil, err
	}
	lookup, err := s.userIndex(ctx)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		issues[i] = populate(issues[i], lookup)
	}
	return issues, nil
}

// Counts returns the aggregates by status.
func (s *IssueService) Counts(ctx context.Context) (models.IssueCounts, error) {
	return s.repo.CountIssues(ctx)
}

// Get returns the issue named title.
func (s *IssueService) Get(ctx context.Context, title string) (*models.Issue, error) {
	issue, err := s.repo.IssueByTitle(ctx, title)
	if err != nil {
		return nil, mapIssueErr(err)
	}
	return s.populated(ctx, *issue)
}

// Create validates and stores a new issue.
func (s *IssueService) Create(ctx context.Context, in models.IssueInput) (*models.Issue, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Assignee = strings.TrimSpace(in.Assignee)
	if in.Status == "" {
		in.Status = models.StatusOpen
	}
	if in.Priority == "" {
		in.Priority = models.PriorityLow
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	issue := models.Issue{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   s.now().UTC(),
	}
	if in.Assignee != "" {
		issue.Assignee = &models.Assignee{Ref: in.Assignee}
	}
	if err := s.repo.CreateIssue(ctx, issue); err != nil {
		return nil, mapIssueErr(err)
	}
	return s.populated(ctx, issue)
}

// Update validates and applies the editable fields.
func (s *IssueService) Update(ctx context.Context, title string, u models.IssueUpdate) (*models.Issue, error) {
	if err := validate.Struct(u); err != nil {
		return nil, err
	}
	issue, err := s.repo.UpdateIssue(ctx, title, u)
	if err != nil {
		return nil, mapIssueErr(err)
	}
	return s.populated(ctx, *issue)
}

// Delete removes an issue. Only admins may.
func (s *IssueService) Delete(ctx context.Context, caller models.Principal, title string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return mapIssueErr(s.repo.DeleteIssue(ctx, title))
}

func (s *IssueService) populated(ctx context.Context, issue models.Issue) (*models.Issue, error) {
	lookup, err := s.userIndex(ctx)
	if err != nil {
		return nil, err
	}
	issue = populate(issue, lookup)
	return &issue, nil
}

func (s *IssueService) userIndex(ctx context.Context) (map[string]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]models.User, 2*len(users))
	for _, u := range users {
		index[u.ID] = u
		index[u.Name] = u
	}
	return index, nil
}

// populate embeds the assignee's user record when the stored reference
// names a known user, the way a populated reference looks on the wire.
func populate(issue models.Issue, users map[string]models.User) models.Issue {
	if issue.Assignee == nil || issue.Assignee.User != nil {
		return issue
	}
	if u, ok := users[issue.Assignee.Ref]; ok {
		issue.Assignee = &models.Assignee{User: &u}
	}
	return issue
}

func mapIssueErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrIssueNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrIssueExists
	default:
		return err
	}
}
