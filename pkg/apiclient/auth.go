package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the token and the raw profile fields sent alongside it.
// The profile is left raw so the session layer can validate it.
type LoginResult struct {
	Token   string
	Profile json.RawMessage
}

// Login posts credentials to /auth/login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/login",
		path:   "/auth/login",
		body:   creds,
		out:    &raw,
	}); err != nil {
		return nil, err
	}

	var envelope struct {
		Token string `json:"token"`
	}
	// a body that is not an object is treated as "no token"
	_ = json.Unmarshal(raw, &envelope)
	return &LoginResult{Token: envelope.Token, Profile: raw}, nil
}

// RegisterResult is the backend's reply to a registration.
type RegisterResult struct {
	Message string          `json:"message,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Register posts a new account to /auth/register.
func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (*RegisterResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/auth/register",
		path:   "/auth/register",
		body:   req,
		out:    &raw,
	}); err != nil {
		return nil, err
	}
	result := &RegisterResult{Body: raw}
	var text string
	var obj struct {
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(raw, &text) == nil:
		result.Message = text
	case json.Unmarshal(raw, &obj) == nil:
		result.Message = obj.Message
	}
	return result, nil
}
