package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/IssueKeeper/internal/middleware"
	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/service"
)

// IssueService defines the issue operations required by IssueHandler.
type IssueService interface {
	List(ctx context.Context) ([]models.Issue, error)
	Counts(ctx context.Context) (models.IssueCounts, error)
	Get(ctx context.Context, title string) (*models.Issue, error)
	Create(ctx context.Context, in models.IssueInput) (*models.Issue, error)
	Update(ctx context.Context, title string, u models.IssueUpdate) (*models.Issue, error)
	Delete(ctx context.Context, caller models.Principal, title string) error
}

// IssueHandler handles the /issue endpoints.
type IssueHandler struct {
	IssueService IssueService
}

// titleParam returns the unescaped {title} segment. chi matches on the
// raw path when the URL carries escapes the default encoding would not
// produce, such as %2F.
func titleParam(r *http.Request) (string, bool) {
	title := chi.URLParam(r, "title")
	if r.URL.RawPath == "" {
		return title, title != ""
	}
	unescaped, err := url.PathUnescape(title)
	if err != nil || unescaped == "" {
		return "", false
	}
	return unescaped, true
}

func (h *IssueHandler) fail(w http.ResponseWriter, err error, fallback string) {
	switch {
	case writeValidation(w, err):
	case errors.Is(err, service.ErrIssueNotFound):
		writeError(w, http.StatusNotFound, "Issue not found")
	case errors.Is(err, service.ErrIssueExists):
		writeError(w, http.StatusConflict, "An issue with this title already exists")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Only admins can delete issues")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// List handles GET /issue and answers {"issues": [...]}.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.IssueService.List(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list issues")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// Counts handles GET /issue/counts.
func (h *IssueHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.IssueService.Counts(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to count issues")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Get handles GET /issue/{title} and answers {"issue": {...}}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	title, ok := titleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue title")
		return
	}
	issue, err := h.IssueService.Get(r.Context(), title)
	if err != nil {
		h.fail(w, err, "Failed to fetch issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
}

// Create handles POST /issue.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.IssueInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	issue, err := h.IssueService.Create(r.Context(), in)
	if err != nil {
		h.fail(w, err, "Failed to create issue")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Issue created", "issue": issue})
}

// Update handles PUT /issue/{title}.
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	title, ok := titleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue title")
		return
	}
	var u models.IssueUpdate
	if err := decode(w, r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	issue, err := h.IssueService.Update(r.Context(), title, u)
	if err != nil {
		h.fail(w, err, "Failed to update issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Issue updated", "issue": issue})
}

// Delete handles DELETE /issue/{title}. Only admins may delete.
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	title, ok := titleParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue title")
		return
	}
	caller, _ := middleware.GetPrincipalFromContext(r.Context())
	if err := h.IssueService.Delete(r.Context(), caller, title); err != nil {
		h.fail(w, err, "Failed to delete issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue deleted"})
}
