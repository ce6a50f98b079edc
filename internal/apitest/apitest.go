// Package apitest runs the reference issue API in-process for client
// tests. The server is the real router over in-memory repositories, with
// every request recorded.
package apitest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	handler "github.com/atinyakov/IssueKeeper/internal/server/handler/http"
	"github.com/atinyakov/IssueKeeper/internal/service"
)

// Request is one recorded call.
type Request struct {
	Method string
	// Path is the escaped request path, as sent.
	Path   string
	Header http.Header
	Body   []byte
}

type override struct {
	status int
	body   string
}

// Server is a running API.
type Server struct {
	*httptest.Server

	Users  *repository.MemoryUserRepository
	Issues *repository.MemoryIssueRepository
	Auth   *service.AuthService

	mu        sync.Mutex
	requests  []Request
	overrides map[string]override
}

// Option configures a Server.
type Option func(*Server)

// WithoutCounts makes GET /issue/counts answer 404, like an API that
// predates the endpoint.
func WithoutCounts() Option {
	return func(s *Server) {
		s.overrides["GET /issue/counts"] = override{status: http.StatusNotFound, body: `{"message":"Not found"}`}
	}
}

// New starts a server and stops it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		Users:     repository.NewMemoryUserRepository(),
		Issues:    repository.NewMemoryIssueRepository(),
		overrides: make(map[string]override),
	}
	s.Auth = service.NewAuthService(s.Users, []byte("apitest-secret"), time.Hour)
	issues := service.NewIssueService(s.Issues, s.Users)
	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: s.Auth},
		&handler.IssueHandler{IssueService: issues},
		s.Auth,
		zap.NewNop(),
	)
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.record(router))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		o, ok := s.overrides[r.Method+" "+r.URL.EscapedPath()]
		s.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(o.status)
			_, _ = io.WriteString(w, o.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Override answers every later method+path request with status and body.
// Path is matched in its escaped form.
func (s *Server) Override(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, body: body}
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Find returns the recorded calls matching method and a path prefix.
func (s *Server) Find(method, pathPrefix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			out = append(out, r)
		}
	}
	return out
}

// AddUser creates an account and returns its logged-in response.
func (s *Server) AddUser(t testing.TB, name, email, password string, role models.Role) models.AuthResponse {
	t.Helper()
	ctx := context.Background()
	if role == models.RoleAdmin {
		if _, err := s.Auth.EnsureAdmin(ctx, name, email, password); err != nil {
			t.Fatalf("apitest: add admin: %v", err)
		}
		resp, err := s.Auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
		if err != nil {
			t.Fatalf("apitest: login admin: %v", err)
		}
		return *resp
	}
	resp, err := s.Auth.Register(ctx, models.SignupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("apitest: add user: %v", err)
	}
	return *resp
}

// AddIssue stores an issue with the given creation time.
func (s *Server) AddIssue(t testing.TB, issue models.Issue) {
	t.Helper()
	if issue.ID == "" {
		issue.ID = "issue-" + issue.Title
	}
	if issue.Status == "" {
		issue.Status = models.StatusOpen
	}
	if issue.Priority == "" {
		issue.Priority = models.PriorityLow
	}
	if err := s.Issues.CreateIssue(context.Background(), issue); err != nil {
		t.Fatalf("apitest: add issue %q: %v", issue.Title, err)
	}
}

// Issue returns the stored issue named title.
func (s *Server) Issue(title string) (models.Issue, bool) {
	issue, err := s.Issues.IssueByTitle(context.Background(), title)
	if err != nil {
		return models.Issue{}, false
	}
	return *issue, true
}
