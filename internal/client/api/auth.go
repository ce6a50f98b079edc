package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "login", c.loginPath, req)
}

// Register creates an account. On success the API logs the user in and
// answers the same way as Login.
func (c *Client) Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "register", c.registerPath, req)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, op, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == (models.User{}) {
		return nil, &Error{Op: op, Kind: KindDecode, Message: "Login response is missing the token or user."}
	}
	return &resp, nil
}
