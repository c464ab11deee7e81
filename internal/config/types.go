package config

// Config is the root configuration structure for pilotdeck.
// Serialised to ~/.pilotdeck/config.json.
type Config struct {
	Server Server `mapstructure:"server" json:"server"`
	Git    Git    `mapstructure:"git"    json:"git"`
	Poll   Poll   `mapstructure:"poll"   json:"poll"`
	Output Output `mapstructure:"output" json:"output"`
}

// Server points the client at the backend.
type Server struct {
	// URL is the backend root, e.g. https://deck.example.com. The API prefix
	// is part of each call's path, not of this value.
	URL string `mapstructure:"url" json:"url"`
}

// Git holds the co-author identity stamped onto agent commits.
type Git struct {
	CoAuthorName  string `mapstructure:"co_author_name"  json:"co_author_name"`
	CoAuthorEmail string `mapstructure:"co_author_email" json:"co_author_email"`
}

// Poll controls the refresh cadence of the TUI views, in seconds.
type Poll struct {
	// Session is the detail-view interval (default: 2).
	Session int `mapstructure:"session" json:"session"`
	// List is the session-list interval (default: 30).
	List int `mapstructure:"list" json:"list"`
}

// Output controls CLI rendering.
type Output struct {
	// Format is "table" (default), "json", or "yaml".
	Format string `mapstructure:"format" json:"format"`
	// PerPage is the default page size for list commands (default: 20).
	PerPage int `mapstructure:"per_page" json:"per_page"`
}
