package api

import (
	"context"
	"strconv"
)

// Admin AI-profile endpoints. The api_key field is write-only: list/get
// responses never include it.

// AIProviders is the provider-kind vocabulary accepted by the backend.
var AIProviders = []string{"gemini", "openai", "anthropic", "azure", "custom"}

// ListAIProfiles returns all configured profiles.
func (c *Client) ListAIProfiles(ctx context.Context) ([]AIProfile, error) {
	var out []AIProfile
	if err := c.get(ctx, "/v1/admin/ai-profiles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAIProfile fetches one profile by id.
func (c *Client) GetAIProfile(ctx context.Context, id int64) (*AIProfile, error) {
	var out AIProfile
	if err := c.get(ctx, "/v1/admin/ai-profiles/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAIProfile adds a new profile.
func (c *Client) CreateAIProfile(ctx context.Context, in AIProfileInput) (*AIProfile, error) {
	var out AIProfile
	if err := c.post(ctx, "/v1/admin/ai-profiles", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAIProfile replaces a profile's settings. Leaving APIKey empty keeps
// the stored secret.
func (c *Client) UpdateAIProfile(ctx context.Context, id int64, in AIProfileInput) (*AIProfile, error) {
	var out AIProfile
	if err := c.put(ctx, "/v1/admin/ai-profiles/"+strconv.FormatInt(id, 10), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAIProfile removes a profile.
func (c *Client) DeleteAIProfile(ctx context.Context, id int64) error {
	return c.del(ctx, "/v1/admin/ai-profiles/"+strconv.FormatInt(id, 10), nil)
}

// ToggleAIProfile flips a profile's enabled flag.
func (c *Client) ToggleAIProfile(ctx context.Context, id int64) (*ToggleResult, error) {
	var out ToggleResult
	if err := c.patch(ctx, "/v1/admin/ai-profiles/"+strconv.FormatInt(id, 10)+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
