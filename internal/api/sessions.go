package api

import "context"

// Session operations. Each maps one named operation to one backend call —
// no branching, no orchestration, just parameter forwarding. State
// transitions happen server-side; the client only triggers them (approve,
// input) and refetches.

// CreateSession starts a new agent session and returns its identifier.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*SessionCreated, error) {
	var out SessionCreated
	if err := c.post(ctx, "/v1/agent/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches the full current state of a session. Logs is always the
// complete list, so callers replace rather than merge.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := c.get(ctx, "/v1/agent/sessions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns one page of the current user's sessions. status is an
// optional filter; empty means all.
func (c *Client) ListSessions(ctx context.Context, page, perPage int, status string) (*SessionList, error) {
	params := Params{"page": page, "per_page": perPage, "status": nil}
	if status != "" {
		params["status"] = status
	}
	var out SessionList
	if err := c.get(ctx, "/v1/user/sessions", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveSession resumes a session waiting for user review.
func (c *Client) ApproveSession(ctx context.Context, id string) error {
	return c.post(ctx, "/v1/agent/sessions/"+id+"/approve", struct{}{}, nil)
}

// AddSessionInput sends a free-text message to the running agent.
func (c *Client) AddSessionInput(ctx context.Context, id, message string) error {
	body := struct {
		Message string `json:"message"`
	}{Message: message}
	return c.post(ctx, "/v1/agent/sessions/"+id+"/input", body, nil)
}
