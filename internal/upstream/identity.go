package upstream

import (
	"context"
	"encoding/json"
	"net/http"
)

// Identity endpoints, djoser-style under /auth.
const (
	jwtCreatePath            = "/auth/jwt/create/"
	jwtRefreshPath           = "/auth/jwt/refresh/"
	usersPath                = "/auth/users/"
	usersMePath              = "/auth/users/me/"
	activationPath           = "/auth/users/activation/"
	resetPasswordPath        = "/auth/users/reset_password/"
	resetPasswordConfirmPath = "/auth/users/reset_password_confirm/"
)

// TokenPair is the upstream's answer to a credential exchange.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the stable client-facing user shape. Every field is a string so the
// browser never deals with a numeric-or-missing id.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// upstreamUser matches the identity API's own user shape.
type upstreamUser struct {
	ID        json.Number `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

func (u upstreamUser) reshape() *User {
	return &User{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// CreateTokens exchanges credentials for an access/refresh pair.
func (c *Client) CreateTokens(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, jwtCreatePath, "", map[string]string{
		"email":    email,
		"password": password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// RefreshAccess trades a refresh token for a fresh access token.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := c.do(ctx, http.MethodPost, jwtRefreshPath, "", map[string]string{
		"refresh": refresh,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

// Register creates a new (inactive) account.
func (c *Client) Register(ctx context.Context, email, password, rePassword, firstName, lastName string) (*User, error) {
	var created upstreamUser
	err := c.do(ctx, http.MethodPost, usersPath, "", map[string]string{
		"email":       email,
		"password":    password,
		"re_password": rePassword,
		"first_name":  firstName,
		"last_name":   lastName,
	}, &created)
	if err != nil {
		return nil, err
	}
	return created.reshape(), nil
}

// CurrentUser fetches the authenticated user and reshapes it.
func (c *Client) CurrentUser(ctx context.Context, access string) (*User, error) {
	var u upstreamUser
	if err := c.do(ctx, http.MethodGet, usersMePath, access, nil, &u); err != nil {
		return nil, err
	}
	return u.reshape(), nil
}

// Activate confirms an account from an emailed uid/token pair.
func (c *Client) Activate(ctx context.Context, uid, token string) error {
	return c.do(ctx, http.MethodPost, activationPath, "", map[string]string{
		"uid":   uid,
		"token": token,
	}, nil)
}

// RequestPasswordReset asks the upstream to send a reset email. The caller
// must not leak whether the address exists.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, resetPasswordPath, "", map[string]string{
		"email": email,
	}, nil)
}

// ConfirmPasswordReset finalizes a reset from the emailed uid/token pair.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error {
	return c.do(ctx, http.MethodPost, resetPasswordConfirmPath, "", map[string]string{
		"uid":             uid,
		"token":           token,
		"new_password":    newPassword,
		"re_new_password": reNewPassword,
	}, nil)
}

// DeleteAccount removes the authenticated user's account.
func (c *Client) DeleteAccount(ctx context.Context, access, currentPassword string) error {
	return c.do(ctx, http.MethodDelete, usersMePath, access, map[string]string{
		"current_password": currentPassword,
	}, nil)
}
