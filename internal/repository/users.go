// Package repository provides persistence implementations for the
// reference API server: PostgreSQL for real deployments and in-memory
// maps for development and tests.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

var (
	// ErrNotFound means no live record matched.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique key (email, live title) is taken.
	ErrConflict = errors.New("already exists")
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}

// PostgresUserRepository stores users in PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a user. A taken email gives ErrConflict.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, rec models.UserRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Name, rec.Email, rec.PasswordHash, string(rec.Role),
	)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", mapPQError(err))
	}
	return nil
}

// UserByEmail returns the user registered under email.
func (r *PostgresUserRepository) UserByEmail(ctx context.Context, email string) (*models.UserRecord, error) {
	var rec models.UserRecord
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role FROM users WHERE email = $1`,
		email,
	).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UserByEmail: %w", err)
	}
	return &rec, nil
}

// ListUsers returns every user ordered by name, without hashes.
func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, email, role FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}
