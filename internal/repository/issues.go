package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// PostgresIssueRepository stores issues in PostgreSQL. Deleted issues are
// only flagged; db.StartSoftDeleteCleaner purges them later.
type PostgresIssueRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresIssueRepository creates a PostgresIssueRepository with the given database connection.
func NewPostgresIssueRepository(db *sql.DB) *PostgresIssueRepository {
	return &PostgresIssueRepository{DB: db}
}

const issueColumns = `id, title, description, status, priority, assignee, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (models.Issue, error) {
	var (
		issue    models.Issue
		assignee string
	)
	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &issue.Status, &issue.Priority, &assignee, &issue.CreatedAt)
	if err != nil {
		return models.Issue{}, err
	}
	if assignee != "" {
		issue.Assignee = &models.Assignee{Ref: assignee}
	}
	return issue, nil
}

// ListIssues returns every live issue, newest first.
func (r *PostgresIssueRepository) ListIssues(ctx context.Context) ([]models.Issue, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE deleted = false ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("ListIssues: %w", err)
	}
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListIssues: %w", err)
	}
	return issues, nil
}

// IssueByTitle returns the live issue named title.
func (r *PostgresIssueRepository) IssueByTitle(ctx context.Context, title string) (*models.Issue, error) {
	issue, err := scanIssue(r.DB.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE title = $1 AND deleted = false`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("IssueByTitle: %w", err)
	}
	return &issue, nil
}

// CreateIssue inserts issue. A live issue with the same title gives
// ErrConflict.
func (r *PostgresIssueRepository) CreateIssue(ctx context.Context, issue models.Issue) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO issues (`+issueColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		issue.ID, issue.Title, issue.Description, string(issue.Status), string(issue.Priority),
		issue.Assignee.Name(), issue.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateIssue: %w", mapPQError(err))
	}
	return nil
}

// UpdateIssue overwrites the editable fields and returns the result.
func (r *PostgresIssueRepository) UpdateIssue(ctx context.Context, title string, u models.IssueUpdate) (*models.Issue, error) {
	issue, err := scanIssue(r.DB.QueryRowContext(ctx, `
		UPDATE issues SET description = $1, status = $2, priority = $3
		 WHERE title = $4 AND deleted = false
		RETURNING `+issueColumns,
		u.Description, string(u.Status), string(u.Priority), title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateIssue: %w", err)
	}
	return &issue, nil
}

// DeleteIssue soft-deletes the live issue named title.
func (r *PostgresIssueRepository) DeleteIssue(ctx context.Context, title string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE issues SET deleted = true, deleted_at = $1 WHERE title = $2 AND deleted = false`,
		time.Now().UTC(), title)
	if err != nil {
		return fmt.Errorf("DeleteIssue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteIssue: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountIssues aggregates live issues by status.
func (r *PostgresIssueRepository) CountIssues(ctx context.Context) (models.IssueCounts, error) {
	var c models.IssueCounts
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Open'),
		       COUNT(*) FILTER (WHERE status = 'In-Progress'),
		       COUNT(*) FILTER (WHERE status = 'Resolved')
		  FROM issues WHERE deleted = false`,
	).Scan(&c.Total, &c.Open, &c.InProgress, &c.Resolved)
	if err != nil {
		return models.IssueCounts{}, fmt.Errorf("CountIssues: %w", err)
	}
	return c, nil
}
