package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionJar is a cookie jar that persists the backend session cookie across
// process runs — the terminal-client stand-in for the browser keeping cookies
// between page loads. Only cookies for the configured backend host are saved.
type SessionJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	path string
	base *url.URL
}

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
}

// NewSessionJar loads any saved cookies for baseURL from path (created on
// first Save).
func NewSessionJar(path, baseURL string) (*SessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	s := &SessionJar{jar: jar, path: path, base: base}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt cookie file just means logging in again.
		return s, nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Expires: c.Expires,
			Secure:  c.Secure,
		})
	}
	jar.SetCookies(base, cookies)
	return s, nil
}

// SetCookies implements http.CookieJar.
func (s *SessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (s *SessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// Save writes the current backend cookies to disk with owner-only permissions.
func (s *SessionJar) Save() error {
	s.mu.Lock()
	cookies := s.jar.Cookies(s.base)
	s.mu.Unlock()

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Expires: c.Expires,
			Secure:  c.Secure,
		})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating cookie directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes all persisted cookies, both in memory and on disk.
func (s *SessionJar) Clear() error {
	s.mu.Lock()
	jar, err := cookiejar.New(nil)
	if err == nil {
		s.jar = jar
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
