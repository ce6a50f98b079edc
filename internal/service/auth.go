// Package service provides the reference server's business logic for
// accounts and issues, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/IssueKeeper/internal/models"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	"github.com/atinyakov/IssueKeeper/internal/validate"
)

var (
	// ErrInvalidCredentials is returned by Login for any mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists is returned by Register for a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken is returned by Verify.
	ErrInvalidToken = errors.New("invalid token")
)

// UserRepository defines the persistence operations required by AuthService.
type UserRepository interface {
	// CreateUser stores a new user. A taken email is repository.ErrConflict.
	CreateUser(ctx context.Context, rec models.UserRecord) error
	// UserByEmail returns the user or repository.ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.UserRecord, error)
	// ListUsers returns every user.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Claims is the payload of an issued credential.
type Claims struct {
	jwt.RegisteredClaims
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// AuthService registers users, checks passwords and issues credentials.
type AuthService struct {
	repo   UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService constructs an AuthService. A non-positive ttl means 24h.
func NewAuthService(repo UserRepository, secret []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

// Register creates a regular account and logs it in.
func (s *AuthService) Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	user := models.User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  models.RoleUser,
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return s.respond("User registered successfully", user)
}

// EnsureAdmin creates an admin account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	user := models.User{ID: uuid.NewString(), Name: name, Email: email, Role: models.RoleAdmin}
	if err := s.create(ctx, user, password); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) create(ctx context.Context, user models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.repo.CreateUser(ctx, models.UserRecord{User: user, PasswordHash: string(hash)})
	if errors.Is(err, repository.ErrConflict) {
		return ErrUserExists
	}
	return err
}

// Login checks the password and issues a credential.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	rec, err := s.repo.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.respond("Login successful", rec.User)
}

// Users lists every account.
func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *AuthService) respond(message string, user models.User) (*models.AuthResponse, error) {
	token, err := s.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Message: message, Token: token, User: user}, nil
}

// Issue signs a credential for user.
func (s *AuthService) Issue(user models.User) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: user.Name,
		Role: user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks a credential's signature and expiry.
func (s *AuthService) Verify(token string) (models.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Principal{}, ErrInvalidToken
	}
	return models.Principal{UserID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}
