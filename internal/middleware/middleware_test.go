package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (models.Principal, error) {
	if token == "good" {
		return models.Principal{UserID: "u1", Name: "alice", Role: models.RoleAdmin}, nil
	}
	return models.Principal{}, errors.New("bad token")
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantCalled bool
		wantCode   int
		wantBody   string
	}{
		{"no header", "", false, http.StatusUnauthorized, "No token provided"},
		{"wrong scheme", "Basic abc", false, http.StatusUnauthorized, "No token provided"},
		{"invalid token", "Bearer bad", false, http.StatusUnauthorized, "Invalid or expired token"},
		{"valid token", "Bearer good", true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(fakeVerifier{})(dummy)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/issue", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			if dummy.called != tt.wantCalled {
				t.Errorf("next called = %v; want %v", dummy.called, tt.wantCalled)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantCalled {
				if user := GetUserIDFromContext(dummy.ctx); user != "u1" {
					t.Errorf("expected context user 'u1', got '%s'", user)
				}
				p, ok := GetPrincipalFromContext(dummy.ctx)
				if !ok || !p.IsAdmin() {
					t.Errorf("expected admin principal, got %+v", p)
				}
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	// no value
	empty := GetUserIDFromContext(context.Background())
	if empty != "" {
		t.Errorf("expected empty string for missing user, got '%s'", empty)
	}
	// with value
	ctx := WithPrincipal(context.Background(), models.Principal{UserID: "bob"})
	val := GetUserIDFromContext(ctx)
	if val != "bob" {
		t.Errorf("expected 'bob', got '%s'", val)
	}
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := chiMiddleware.RequestID(WithRequestLogging(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/issue", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["path"] != "/issue" || fields["method"] != "POST" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["bytes"] != int64(len("short and stout")) {
		t.Errorf("bytes field = %v", fields["bytes"])
	}
	if fields["request_id"] == "" {
		t.Error("expected a request id")
	}
}
