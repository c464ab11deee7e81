package api

import "context"

// Me returns the authenticated user. ErrUnauthenticated means no session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with username and password. The backend sets the
// session cookie; the caller saves the jar afterwards.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}
	return c.post(ctx, "/auth/login", body, nil)
}

// LoginProvider initiates an OAuth login with the named provider.
func (c *Client) LoginProvider(ctx context.Context, provider string) error {
	return c.post(ctx, "/auth/login/"+provider, struct{}{}, nil)
}

// Logout ends the server-side session. Callers clear local state regardless
// of the result — logout is best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// EnabledProviders lists login-capable git providers. Public endpoint.
func (c *Client) EnabledProviders(ctx context.Context) ([]EnabledProvider, error) {
	var out []EnabledProvider
	if err := c.get(ctx, "/auth/providers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Identities lists the current user's linked OAuth accounts.
func (c *Client) Identities(ctx context.Context) ([]LinkedIdentity, error) {
	var out []LinkedIdentity
	if err := c.get(ctx, "/auth/identities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnlinkIdentity removes the OAuth link for the named provider.
func (c *Client) UnlinkIdentity(ctx context.Context, provider string) error {
	return c.del(ctx, "/auth/identities/"+provider, nil)
}

// AIPreference returns the user's stored AI profile selection.
func (c *Client) AIPreference(ctx context.Context) (*AIPreference, error) {
	var out AIPreference
	if err := c.get(ctx, "/auth/ai-preference", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAIPreference persists the user's AI profile selection.
func (c *Client) SetAIPreference(ctx context.Context, profileID int64) (*AIPreference, error) {
	body := struct {
		AIProfileID int64 `json:"ai_profile_id"`
	}{AIProfileID: profileID}
	var out AIPreference
	if err := c.post(ctx, "/auth/ai-preference", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
