// Package state holds the client-side application state: the authenticated
// user, the selected AI profile, the page header, and repository page
// accumulation. Stores are plain structs injected at the composition root
// (cmd/ui) and notify subscribers on change — no ambient globals.
package state

import "sync"

// notifier is the shared subscription mechanism. Subscribers run
// synchronously on the mutating goroutine and must not block.
type notifier struct {
	mu   sync.Mutex
	subs []func()
}

// Subscribe registers fn to run after every state change.
func (n *notifier) Subscribe(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *notifier) notify() {
	n.mu.Lock()
	subs := make([]func(), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
