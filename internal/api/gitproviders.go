package api

import (
	"context"
	"strconv"
)

// Admin git-provider endpoints plus the user-facing repository search. Secret
// fields travel only in GitProviderInput; reads expose Has* flags.

// OAuthDefaults are the conventional endpoint URLs per driver, offered as
// form defaults when configuring a new provider.
type OAuthDefaults struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	Scopes      string
}

// DriverDefaults maps each supported driver to its hosted-service OAuth URLs.
// Self-hosted instances override these via base_url.
var DriverDefaults = map[string]OAuthDefaults{
	"github": {
		AuthURL:     "https://github.com/login/oauth/authorize",
		TokenURL:    "https://github.com/login/oauth/access_token",
		UserInfoURL: "https://api.github.com/user",
		Scopes:      "repo,user:email",
	},
	"gitlab": {
		AuthURL:     "https://gitlab.com/oauth/authorize",
		TokenURL:    "https://gitlab.com/oauth/token",
		UserInfoURL: "https://gitlab.com/api/v4/user",
		Scopes:      "api,read_user,read_repository,write_repository",
	},
	"bitbucket": {
		AuthURL:     "https://bitbucket.org/site/oauth2/authorize",
		TokenURL:    "https://bitbucket.org/site/oauth2/access_token",
		UserInfoURL: "https://api.bitbucket.org/2.0/user",
		Scopes:      "account,repository",
	},
}

// ListGitProviders returns all configured providers.
func (c *Client) ListGitProviders(ctx context.Context) ([]GitProvider, error) {
	var out []GitProvider
	if err := c.get(ctx, "/v1/admin/git-providers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetGitProvider fetches one provider by id.
func (c *Client) GetGitProvider(ctx context.Context, id int64) (*GitProvider, error) {
	var out GitProvider
	if err := c.get(ctx, "/v1/admin/git-providers/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGitProvider adds a new provider configuration.
func (c *Client) CreateGitProvider(ctx context.Context, in GitProviderInput) (*GitProvider, error) {
	var out GitProvider
	if err := c.post(ctx, "/v1/admin/git-providers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGitProvider replaces a provider's settings. Empty secret fields keep
// the stored values.
func (c *Client) UpdateGitProvider(ctx context.Context, id int64, in GitProviderInput) (*GitProvider, error) {
	var out GitProvider
	if err := c.put(ctx, "/v1/admin/git-providers/"+strconv.FormatInt(id, 10), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGitProvider removes a provider configuration.
func (c *Client) DeleteGitProvider(ctx context.Context, id int64) error {
	return c.del(ctx, "/v1/admin/git-providers/"+strconv.FormatInt(id, 10), nil)
}

// ToggleGitProvider flips a provider's enabled flag.
func (c *Client) ToggleGitProvider(ctx context.Context, id int64) (*ToggleResult, error) {
	var out ToggleResult
	if err := c.patch(ctx, "/v1/admin/git-providers/"+strconv.FormatInt(id, 10)+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchRepositories returns one page of the user's synced repositories,
// optionally filtered by the free-text query q. Page accumulation and
// duplicate suppression are the caller's job (see state.RepoPager).
func (c *Client) SearchRepositories(ctx context.Context, q string, page, perPage int) (*RepositoryList, error) {
	params := Params{"page": page, "per_page": perPage, "q": nil}
	if q != "" {
		params["q"] = q
	}
	var out RepositoryList
	if err := c.get(ctx, "/v1/user/repositories", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
