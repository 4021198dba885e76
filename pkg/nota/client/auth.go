package client

import (
	"context"
	"net/http"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Auth bool       `json:"auth"`
	User *nota.User `json:"user"`
}

// Verify checks the session cookie. A 401 answer is reported as an
// unauthenticated status without error.
func (c *Client) Verify(ctx context.Context) (nota.AuthStatus, error) {
	var resp verifyResponse
	if err := c.doJSON(ctx, "verify", http.MethodPost, "/auth/verify", nil, &resp); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nota.AuthStatus{}, nil
		}
		return nota.AuthStatus{}, err
	}
	if !resp.Auth {
		return nota.AuthStatus{}, nil
	}
	return nota.AuthStatus{Auth: true, User: resp.User}, nil
}

// Login posts the credentials; the API answers with a session cookie.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, "login", http.MethodPost, "/auth/login", credentialsRequest{Email: email, Password: password}, nil)
}

// Signup registers an account.
func (c *Client) Signup(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, "signup", http.MethodPost, c.signupPath, credentialsRequest{Email: email, Password: password}, nil)
}

// Logout drops the session cookies held by the client.
func (c *Client) Logout() {
	cookies := c.Cookies()
	for _, ck := range cookies {
		ck.MaxAge = -1
		ck.Value = ""
		ck.Path = "/"
	}
	c.SetCookies(cookies)
}
