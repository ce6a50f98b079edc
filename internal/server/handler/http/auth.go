package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns a logged-in response.
	Register(context.Context, models.SignupRequest) (*models.AuthResponse, error)
	// Login checks credentials and returns a logged-in response.
	Login(context.Context, models.LoginRequest) (*models.AuthResponse, error)
	// Users lists every account.
	Users(context.Context) ([]models.User, error)
}

// AuthHandler handles HTTP requests for registration, login and the user
// directory.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// Register handles POST /user/register. It expects {name, email, password}
// and answers 201 with {message, token, user}.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.AuthService.Register(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, resp)
	case writeValidation(w, err):
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusConflict, "User already exists")
	default:
		writeError(w, http.StatusInternalServerError, "Registration failed")
	}
}

// Login handles POST /user/login. It expects {email, password} and
// answers with {message, token, user}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.AuthService.Login(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case writeValidation(w, err):
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		writeError(w, http.StatusInternalServerError, "Login failed")
	}
}

// Users handles GET /user.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.AuthService.Users(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
