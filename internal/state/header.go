package state

import "sync"

// Header is the page title/description shown by the TUI chrome. Purely
// cosmetic; last setter wins.
type Header struct {
	notifier

	mu          sync.Mutex
	title       string
	description string
}

// NewHeader returns an empty Header store.
func NewHeader() *Header {
	return &Header{}
}

// Set replaces the title and description.
func (h *Header) Set(title, description string) {
	h.mu.Lock()
	h.title = title
	h.description = description
	h.mu.Unlock()
	h.notify()
}

// Get returns the current title and description.
func (h *Header) Get() (title, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title, h.description
}
