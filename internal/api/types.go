// Package api is the typed HTTP client for the pilotdeck backend.
// Every call the client makes — sessions, AI profiles, git providers, auth —
// funnels through Client.do. The backend owns all state; the structs here are
// transient copies and a refetch is always authoritative.
package api

import "strconv"

// Session status vocabulary as reported by the backend. Unrecognised values
// are passed through verbatim, so render code must not assume membership.
const (
	StatusQueued         = "QUEUED"
	StatusPlanning       = "PLANNING"
	StatusCoding         = "CODING"
	StatusReviewing      = "REVIEWING"
	StatusWaitingForUser = "WAITING_FOR_USER"
	StatusCompleted      = "COMPLETED"
	StatusFailed         = "FAILED"
)

// StatusActive reports whether the agent is currently working the session.
func StatusActive(status string) bool {
	switch status {
	case StatusPlanning, StatusCoding, StatusReviewing:
		return true
	}
	return false
}

// StatusTerminal reports whether the session has reached a final state.
func StatusTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// SessionRequest is sent to POST /v1/agent/sessions.
type SessionRequest struct {
	Goal             string `json:"goal"`
	RepoURL          string `json:"repo_url,omitempty"`
	RepositoryID     int64  `json:"repository_id,omitempty"`
	BaseBranch       string `json:"base_branch,omitempty"`
	Mode             string `json:"mode,omitempty"` // "auto" or "review"
	AIProfileID      int64  `json:"ai_profile_id,omitempty"`
	GitCoAuthorName  string `json:"git_co_author_name,omitempty"`
	GitCoAuthorEmail string `json:"git_co_author_email,omitempty"`
}

// SessionCreated is returned by POST /v1/agent/sessions.
type SessionCreated struct {
	SessionID string `json:"session_id"`
}

// Session is the full session shape from GET /v1/agent/sessions/{id} and the
// list endpoint. Logs is the complete current list on every fetch, never a
// delta. State is an open key-value bag (goal, plan, base_branch, repo_url,
// ...) — backend-defined keys may grow, so all lookups are optional.
type Session struct {
	ID         int64          `json:"id"`
	SessionID  string         `json:"session_id"`
	Title      string         `json:"title,omitempty"`
	Status     string         `json:"status"`
	Logs       []string       `json:"logs"`
	Result     string         `json:"result,omitempty"`
	State      map[string]any `json:"state,omitempty"`
	Repository *RepoSummary   `json:"repository,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}

// Key returns the identifier used to address the session in API paths.
// Older records may only carry the numeric primary key.
func (s Session) Key() string {
	if s.SessionID != "" {
		return s.SessionID
	}
	return strconv.FormatInt(s.ID, 10)
}

// RepoSummary is the linked-repository block embedded in a Session.
type RepoSummary struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// StateString looks a key up in the open state bag, returning "" for absent
// or non-string values.
func (s Session) StateString(key string) string {
	if s.State == nil {
		return ""
	}
	v, _ := s.State[key].(string)
	return v
}

// ListMeta is the pagination block of list envelopes.
type ListMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// SessionList is the envelope of GET /v1/user/sessions.
type SessionList struct {
	Data []Session `json:"data"`
	Meta ListMeta  `json:"meta"`
}

// AIProfile is a named AI model-provider configuration. APIKey is write-only:
// the backend never returns it.
type AIProfile struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Provider     string `json:"provider"` // gemini, openai, anthropic, azure, custom
	APIKey       string `json:"api_key,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	DefaultModel string `json:"default_model,omitempty"`
	IsEnabled    bool   `json:"is_enabled"`
	IsDefault    bool   `json:"is_default"`
}

// AIProfileInput is the create/update payload for admin profile endpoints.
type AIProfileInput struct {
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	DefaultModel string `json:"default_model,omitempty"`
	IsEnabled    bool   `json:"is_enabled"`
}

// AIPreference is the user's stored profile selection.
type AIPreference struct {
	UserID      int64      `json:"user_id"`
	AIProfileID int64      `json:"ai_profile_id"`
	AIProfile   *AIProfile `json:"ai_profile,omitempty"`
}

// ToggleResult is returned by the PATCH .../toggle endpoints.
type ToggleResult struct {
	ID      int64  `json:"id"`
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// GitProvider is an admin-configured connection to a source-hosting service.
// Secret material is write-only; reads expose only the Has* presence flags.
type GitProvider struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	Driver           string `json:"driver"` // github, gitlab, bitbucket
	Enabled          bool   `json:"enabled"`
	AuthType         string `json:"auth_type"` // oauth or github_app
	ClientID         string `json:"client_id"`
	HasClientSecret  bool   `json:"has_client_secret"`
	AuthURL          string `json:"auth_url"`
	TokenURL         string `json:"token_url"`
	UserInfoURL      string `json:"user_info_url"`
	Scopes           string `json:"scopes"`
	RedirectURL      string `json:"redirect_url"`
	AppID            string `json:"app_id"`
	AppName          string `json:"app_name"`
	HasPrivateKey    bool   `json:"has_private_key"`
	HasWebhookSecret bool   `json:"has_webhook_secret"`
	BaseURL          string `json:"base_url"`
	AppUsername      string `json:"app_username"`
	AppEmail         string `json:"app_email"`
	HasProjectToken  bool   `json:"has_project_token"`
}

// GitProviderInput is the create/update payload. Secret fields are sent here
// and never read back.
type GitProviderInput struct {
	Name               string `json:"name"`
	DisplayName        string `json:"display_name"`
	Driver             string `json:"driver"`
	Enabled            bool   `json:"enabled"`
	AuthType           string `json:"auth_type"`
	ClientID           string `json:"client_id,omitempty"`
	ClientSecret       string `json:"client_secret,omitempty"`
	AuthURL            string `json:"auth_url,omitempty"`
	TokenURL           string `json:"token_url,omitempty"`
	UserInfoURL        string `json:"user_info_url,omitempty"`
	Scopes             string `json:"scopes,omitempty"`
	RedirectURL        string `json:"redirect_url,omitempty"`
	AppID              string `json:"app_id,omitempty"`
	AppName            string `json:"app_name,omitempty"`
	AppUsername        string `json:"app_username,omitempty"`
	AppEmail           string `json:"app_email,omitempty"`
	PrivateKey         string `json:"private_key,omitempty"`
	WebhookSecret      string `json:"webhook_secret,omitempty"`
	BaseURL            string `json:"base_url,omitempty"`
	ProjectAccessToken string `json:"project_access_token,omitempty"`
}

// EnabledProvider is the public (unauthenticated) provider listing used by the
// login flow.
type EnabledProvider struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Driver      string `json:"driver"`
	AuthType    string `json:"auth_type"`
}

// LinkedIdentity is a completed OAuth link between the current user and an
// external provider account.
type LinkedIdentity struct {
	ID         int64  `json:"id"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
}

// Repository is a backend-synced repository, read-only to the client.
type Repository struct {
	ID            int64            `json:"id"`
	ProviderID    int64            `json:"provider_id"`
	Name          string           `json:"name"`
	FullName      string           `json:"full_name"`
	URL           string           `json:"url"`
	SSHURL        string           `json:"ssh_url"`
	CloneURL      string           `json:"clone_url"`
	DefaultBranch string           `json:"default_branch"`
	Language      string           `json:"language"`
	Stars         int              `json:"stars"`
	Private       bool             `json:"private"`
	ExternalID    string           `json:"external_id"`
	Provider      *ProviderSummary `json:"provider,omitempty"`
}

// ProviderSummary is the embedded provider block on Repository.
type ProviderSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Driver      string `json:"driver"`
}

// RepositoryList is the envelope of GET /v1/user/repositories.
type RepositoryList struct {
	Data []Repository `json:"data"`
	Meta ListMeta     `json:"meta"`
}

// User is the authenticated account from GET /auth/me.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}
