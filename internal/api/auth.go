package api

import "context"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := registerRequest{Name: name, Email: email, Password: password}
	if err := c.postJSON(ctx, "register", "/api/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := loginRequest{Email: email, Password: password}
	if err := c.postJSON(ctx, "login", "/api/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
