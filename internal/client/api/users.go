package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// ListUsers returns the users an issue can be assigned to.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "list users"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, "/user", nil, &raw); err != nil {
		return nil, err
	}
	var users []models.User
	if err := decodeList(raw, "users", &users); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return users, nil
}
