package api

import (
	"context"
	"net/http"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User fleet.User `json:"user"`
}

// Login exchanges credentials for a session cookie, which the jar keeps.
func (c *Client) Login(ctx context.Context, email, password string) (fleet.User, error) {
	var out loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/users/login/", nil, loginRequest{Email: email, Password: password}, &out)
	return out.User, err
}

// Logout ends the backend session and forgets local cookies.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/users/logout/", nil, nil, nil)
	c.ClearSession()
	return err
}

// Me returns the user owning the current session.
func (c *Client) Me(ctx context.Context) (fleet.User, error) {
	var out fleet.User
	err := c.doJSON(ctx, http.MethodGet, "/users/me/", nil, nil, &out)
	return out, err
}
