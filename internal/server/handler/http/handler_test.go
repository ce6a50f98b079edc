package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	"github.com/atinyakov/IssueKeeper/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	resp  *models.AuthResponse
	err   error
	users []models.User
}

func (f *fakeAuthService) Register(context.Context, models.SignupRequest) (*models.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuthService) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuthService) Users(context.Context) ([]models.User, error) {
	return f.users, f.err
}

func TestAuthHandler_Register(t *testing.T) {
	ok := &models.AuthResponse{Message: "ok", Token: "t", User: models.User{ID: "u1"}}
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "Invalid request body",
		},
		{
			name:           "user exists",
			body:           `{"name":"bob","email":"bob@example.com","password":"secret"}`,
			service:        &fakeAuthService{err: service.ErrUserExists},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "User already exists",
		},
		{
			name:           "store failure",
			body:           `{"name":"bob","email":"bob@example.com","password":"secret"}`,
			service:        &fakeAuthService{err: errors.New("db error")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "Registration failed",
		},
		{
			name:           "success",
			body:           `{"name":"bob","email":"bob@example.com","password":"secret"}`,
			service:        &fakeAuthService{resp: ok},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"token":"t"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/user/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		service      *fakeAuthService
		expectedCode int
	}{
		{"bad credentials", &fakeAuthService{err: service.ErrInvalidCredentials}, http.StatusUnauthorized},
		{"store failure", &fakeAuthService{err: errors.New("db fail")}, http.StatusInternalServerError},
		{"success", &fakeAuthService{resp: &models.AuthResponse{Token: "t"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/user/login", bytes.NewBufferString(`{"email":"a@b.c","password":"x"}`))

			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("%s: expected status %d, got %d", tt.name, tt.expectedCode, res.StatusCode)
			}
			var payload map[string]any
			if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if tt.expectedCode != http.StatusOK && payload["message"] == "" {
				t.Errorf("expected a message, got %v", payload)
			}
		})
	}
}

// newTestRouter wires the real services over in-memory repositories.
func newTestRouter(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	auth := service.NewAuthService(users, []byte("secret"), time.Hour)
	issues := service.NewIssueService(repository.NewMemoryIssueRepository(), users)
	return NewRouter(&AuthHandler{AuthService: auth}, &IssueHandler{IssueService: issues}, auth, zap.NewNop()), auth
}

func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_IssueLifecycle(t *testing.T) {
	h, auth := newTestRouter(t)
	ctx := context.Background()
	if _, err := auth.EnsureAdmin(ctx, "Admin", "admin@example.com", "adminpass"); err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, "POST", "/user/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	var reg models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&reg); err != nil {
		t.Fatal(err)
	}

	rec = do(t, h, "POST", "/user/login", "", `{"email":"admin@example.com","password":"adminpass"}`)
	var admin models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&admin); err != nil || !admin.User.IsAdmin() {
		t.Fatalf("admin login: %d %v %+v", rec.Code, err, admin)
	}

	if rec := do(t, h, "GET", "/issue", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list: expected 401, got %d", rec.Code)
	}

	rec = do(t, h, "POST", "/issue", reg.Token, `{"title":"Login bug/crash","description":"desc","status":"Open","priority":"High","assignee":"Ann"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, "POST", "/issue", reg.Token, `{"title":"Login bug/crash","description":"again"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/issue", reg.Token, `{"title":"","description":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid: expected 400, got %d", rec.Code)
	}

	rec = do(t, h, "GET", "/issue/Login%20bug%2Fcrash", reg.Token, "")
	var got struct {
		Issue models.Issue `json:"issue"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("get: %d %v", rec.Code, err)
	}
	if got.Issue.Assignee == nil || got.Issue.Assignee.User == nil || got.Issue.Assignee.User.Email != "ann@example.com" {
		t.Errorf("expected populated assignee, got %+v", got.Issue.Assignee)
	}

	rec = do(t, h, "PUT", "/issue/Login%20bug%2Fcrash", reg.Token, `{"description":"fixed","status":"Resolved","priority":"High"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, "GET", "/issue/counts", reg.Token, "")
	var counts models.IssueCounts
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil {
		t.Fatal(err)
	}
	if counts != (models.IssueCounts{Total: 1, Resolved: 1}) {
		t.Errorf("unexpected counts %+v", counts)
	}

	if rec := do(t, h, "DELETE", "/issue/Login%20bug%2Fcrash", reg.Token, ""); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin delete: expected 403, got %d", rec.Code)
	}
	if rec := do(t, h, "DELETE", "/issue/Login%20bug%2Fcrash", admin.Token, ""); rec.Code != http.StatusOK {
		t.Errorf("admin delete: expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/issue/Login%20bug%2Fcrash", reg.Token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", rec.Code)
	}

	rec = do(t, h, "GET", "/user", reg.Token, "")
	var users []models.User
	if err := json.NewDecoder(rec.Body).Decode(&users); err != nil || len(users) != 2 {
		t.Errorf("users: %d %v %v", rec.Code, err, users)
	}
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest("POST", "/user/login", bytes.NewBufferString("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}
