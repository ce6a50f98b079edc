package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

var secret = []byte("test-secret")

func newAuth(t *testing.T) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	return NewAuthService(users, secret, time.Hour), users
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuth(t)

	resp, err := auth.Register(ctx, models.SignupRequest{Name: " Ann ", Email: "Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.User.Name)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.User.ID)

	rec, err := users.UserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte("secret1")))

	_, err = auth.Register(ctx, models.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)

	login, err := auth.Login(ctx, models.LoginRequest{Email: "ANN@example.com", Password: "secret1"})
	require.NoError(t, err)
	p, err := auth.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, p.UserID)
	assert.Equal(t, "Ann", p.Name)

	_, err = auth.Login(ctx, models.LoginRequest{Email: "ann@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	auth, _ := newAuth(t)
	_, err := auth.Register(context.Background(), models.SignupRequest{Name: "Ann", Email: "nope", Password: "123"})
	var errs validate.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	created, err := auth.EnsureAdmin(ctx, "Admin", "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = auth.EnsureAdmin(ctx, "Admin", "ADMIN@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := auth.Login(ctx, models.LoginRequest{Email: "admin@example.com", Password: "adminpass"})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin())
}

func TestAuthService_Verify(t *testing.T) {
	auth, _ := newAuth(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	token, err := auth.Issue(models.User{ID: "u1", Name: "Ann", Role: models.RoleAdmin})
	require.NoError(t, err)

	p, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{UserID: "u1", Name: "Ann", Role: models.RoleAdmin}, p)

	auth.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = auth.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(repository.NewMemoryUserRepository(), []byte("other"), time.Hour)
	other.now = func() time.Time { return now }
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString(secret)
	require.NoError(t, err)
	auth.now = func() time.Time { return now }
	_, err = auth.Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newIssues(t *testing.T) (*IssueService, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	require.NoError(t, users.CreateUser(context.Background(), models.UserRecord{
		User: models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin},
	}))
	return NewIssueService(repository.NewMemoryIssueRepository(), users), users
}

func TestIssueService_CreateDefaultsAndAssignee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssues(t)

	issue, err := svc.Create(ctx, models.IssueInput{Title: " Bug A ", Description: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Bug A", issue.Title)
	assert.Equal(t, models.StatusOpen, issue.Status)
	assert.Equal(t, models.PriorityLow, issue.Priority)
	assert.Nil(t, issue.Assignee)

	issue, err = svc.Create(ctx, models.IssueInput{Title: "Bug B", Description: "d", Assignee: "Ann"})
	require.NoError(t, err)
	require.NotNil(t, issue.Assignee.User)
	assert.Equal(t, "ann@example.com", issue.Assignee.User.Email)

	issue, err = svc.Create(ctx, models.IssueInput{Title: "Bug C", Description: "d", Assignee: "Stranger"})
	require.NoError(t, err)
	assert.Nil(t, issue.Assignee.User)
	assert.Equal(t, "Stranger", issue.Assignee.Name())

	_, err = svc.Create(ctx, models.IssueInput{Title: "Bug A", Description: "again"})
	assert.ErrorIs(t, err, ErrIssueExists)

	_, err = svc.Create(ctx, models.IssueInput{Title: "", Description: ""})
	var errs validate.Errors
	assert.True(t, errors.As(err, &errs))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestIssueService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIssues(t)
	_, err := svc.Create(ctx, models.IssueInput{Title: "Bug A", Description: "desc"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "Bug A", models.IssueUpdate{Description: "new", Status: models.StatusInProgress, Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)

	_, err = svc.Update(ctx, "Bug A", models.IssueUpdate{Description: "x", Status: "Closed", Priority: models.PriorityHigh})
	var errs validate.Errors
	assert.True(t, errors.As(err, &errs))

	_, err = svc.Update(ctx, "nope", models.IssueUpdate{Description: "x", Status: models.StatusOpen, Priority: models.PriorityHigh})
	assert.ErrorIs(t, err, ErrIssueNotFound)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.IssueCounts{Total: 1, InProgress: 1}, counts)

	assert.ErrorIs(t, svc.Delete(ctx, models.Principal{UserID: "u2", Role: models.RoleUser}, "Bug A"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, models.Principal{UserID: "u1", Role: models.RoleAdmin}, "Bug A"))
	assert.ErrorIs(t, svc.Delete(ctx, models.Principal{Role: models.RoleAdmin}, "Bug A"), ErrIssueNotFound)

	_, err = svc.Get(ctx, "Bug A")
	assert.ErrorIs(t, err, ErrIssueNotFound)
}
