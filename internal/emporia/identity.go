package emporia

import (
	"context"
	"net/http"
	"net/url"
)

const identityBase = "/v1/identity"

// Register creates a new account. It has no session side effects; validation
// failures surface as *Problem field errors.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	rel := &url.URL{Path: identityBase + "/register"}
	return c.post(ctx, rel, "", req, nil)
}

// Login exchanges credentials for a token bundle. The server also sets the
// refresh cookie on this client's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenBundle, error) {
	rel := &url.URL{Path: identityBase + "/login"}
	var bundle TokenBundle
	if err := c.post(ctx, rel, "", req, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// RefreshToken exchanges the refresh cookie for a new token bundle.
func (c *Client) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	rel := &url.URL{Path: identityBase + "/refresh"}
	var bundle TokenBundle
	if err := c.post(ctx, rel, "", struct{}{}, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Logout invalidates the refresh credential server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	rel := &url.URL{Path: identityBase + "/logout"}
	return c.post(ctx, rel, token, struct{}{}, nil)
}

// ChangePassword rotates the account password. Requires authentication.
func (c *Client) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) error {
	rel := &url.URL{Path: identityBase + "/change-password"}
	return c.post(ctx, rel, token, req, nil)
}

// DeleteAccount permanently removes the account. Requires authentication.
func (c *Client) DeleteAccount(ctx context.Context, token string, req DeleteAccountRequest) error {
	rel := &url.URL{Path: identityBase + "/delete-account"}
	return c.do(ctx, http.MethodDelete, rel, token, req, nil)
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	rel := &url.URL{Path: identityBase + "/forgot-password"}
	return c.post(ctx, rel, "", req, nil)
}

// ResetPassword completes a password reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	rel := &url.URL{Path: identityBase + "/reset-password"}
	return c.post(ctx, rel, "", req, nil)
}

// ConfirmEmail confirms account ownership of an email address.
func (c *Client) ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) error {
	rel := &url.URL{Path: identityBase + "/confirm-email"}
	return c.post(ctx, rel, "", req, nil)
}
