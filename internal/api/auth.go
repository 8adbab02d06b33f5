package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type checkUserRequest struct {
	Email string `json:"email"`
}

// CheckUserResult tells the login page whether to ask for a password or
// start registration.
type CheckUserResult struct {
	Exists bool   `json:"exists"`
	Msg    string `json:"msg,omitempty"`
}

func (c *Client) CheckUser(ctx context.Context, email string) (*CheckUserResult, error) {
	var out CheckUserResult
	if err := c.do(ctx, http.MethodPost, "/auth/check-user", false, checkUserRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, v domain.OTPVerification) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", false, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/user", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser sends a partial profile update, e.g. {"addresses": [...]}.
func (c *Client) UpdateUser(ctx context.Context, update any) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/auth/user", true, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
