package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

func issuePath(title string) string {
	return "/issue/" + url.PathEscape(title)
}

// ListIssues returns every issue visible to the session. The API answers
// with either a bare array or {"issues": [...]}; both are accepted.
func (c *Client) ListIssues(ctx context.Context) ([]models.Issue, error) {
	const op = "list issues"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, "/issue", nil, &raw); err != nil {
		return nil, err
	}
	var issues []models.Issue
	if err := decodeList(raw, "issues", &issues); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return issues, nil
}

// IssueCounts returns the server-side aggregate counts.
func (c *Client) IssueCounts(ctx context.Context) (*models.IssueCounts, error) {
	var counts models.IssueCounts
	if err := c.do(ctx, "issue counts", http.MethodGet, "/issue/counts", nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// GetIssue fetches one issue by title. The body is {"issue": {...}}.
func (c *Client) GetIssue(ctx context.Context, title string) (*models.Issue, error) {
	const op = "get issue"
	var body struct {
		Issue *models.Issue `json:"issue"`
	}
	if err := c.do(ctx, op, http.MethodGet, issuePath(title), nil, &body); err != nil {
		return nil, err
	}
	if body.Issue == nil {
		return nil, &Error{Op: op, Kind: KindNotFound, Message: "Issue not found."}
	}
	return body.Issue, nil
}

// CreateIssue posts a new issue and returns what the API stored.
func (c *Client) CreateIssue(ctx context.Context, in models.IssueInput) (*models.Issue, error) {
	const op = "create issue"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, "/issue", in, &raw); err != nil {
		return nil, err
	}
	issue, err := decodeIssue(raw)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	if issue == nil {
		issue = &models.Issue{Title: in.Title, Description: in.Description, Status: in.Status, Priority: in.Priority}
	}
	return issue, nil
}

// UpdateIssue replaces the editable fields of the issue named title.
func (c *Client) UpdateIssue(ctx context.Context, title string, update models.IssueUpdate) (*models.Issue, error) {
	const op = "update issue"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPut, issuePath(title), update, &raw); err != nil {
		return nil, err
	}
	issue, err := decodeIssue(raw)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return issue, nil
}

// DeleteIssue removes the issue named title. Any 2xx is success.
func (c *Client) DeleteIssue(ctx context.Context, title string) error {
	return c.do(ctx, "delete issue", http.MethodDelete, issuePath(title), nil, nil)
}

// decodeList accepts a bare JSON array or an object holding the array
// under key.
func decodeList(raw json.RawMessage, key string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, out)
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		inner, ok := wrapper[key]
		if !ok || len(bytes.TrimSpace(inner)) == 0 || bytes.TrimSpace(inner)[0] != '[' {
			return errors.New("unexpected response format: no " + key + " array")
		}
		return json.Unmarshal(inner, out)
	default:
		return errors.New("unexpected response format")
	}
}

// decodeIssue accepts an issue object, {"issue": {...}}, or nothing.
func decodeIssue(raw json.RawMessage) (*models.Issue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	var wrapper struct {
		Issue *models.Issue `json:"issue"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Issue != nil {
		return wrapper.Issue, nil
	}
	var issue models.Issue
	if err := json.Unmarshal(trimmed, &issue); err != nil {
		return nil, err
	}
	if issue.Title == "" && issue.ID == "" {
		return nil, nil
	}
	return &issue, nil
}
