package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// Profiles tracks the AI profile list and the user's active selection.
//
// The active selection resolves in order: stored preference, then the profile
// flagged default, then the first profile in list order, then none. Select
// applies the new choice locally first, persists it, and rolls the local
// value back if the server rejects it — the UI never keeps showing a
// selection the server refused.
type Profiles struct {
	notifier
	client *api.Client

	mu       sync.Mutex
	profiles []api.AIProfile
	selected int64 // 0 = none
	loading  bool
	lastErr  error
}

// NewProfiles returns a Profiles store bound to client.
func NewProfiles(client *api.Client) *Profiles {
	return &Profiles{client: client, loading: true}
}

// Load fetches the profile list and the stored preference concurrently, then
// resolves the active selection.
func (p *Profiles) Load(ctx context.Context) {
	var (
		wg       sync.WaitGroup
		profiles []api.AIProfile
		pref     *api.AIPreference
		listErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		profiles, listErr = p.client.ListAIProfiles(ctx)
	}()
	go func() {
		defer wg.Done()
		// A missing preference is the normal first-run case, not an error.
		pref, _ = p.client.AIPreference(ctx)
	}()
	wg.Wait()

	p.mu.Lock()
	p.loading = false
	p.lastErr = listErr
	if listErr != nil {
		slog.Debug("loading AI profiles failed", "error", listErr)
		p.mu.Unlock()
		p.notify()
		return
	}
	p.profiles = profiles
	var prefID int64
	if pref != nil {
		prefID = pref.AIProfileID
	}
	p.selected = resolveSelection(profiles, prefID)
	p.mu.Unlock()
	p.notify()
}

// resolveSelection picks the active profile id: preference, default flag,
// first in list order, or 0 for none.
func resolveSelection(profiles []api.AIProfile, preference int64) int64 {
	if preference != 0 {
		return preference
	}
	for _, pr := range profiles {
		if pr.IsDefault {
			return pr.ID
		}
	}
	if len(profiles) > 0 {
		return profiles[0].ID
	}
	return 0
}

// Select switches the active profile. The change is applied locally before
// the preference call so the UI responds immediately; on failure the previous
// value is restored and the error returned.
func (p *Profiles) Select(ctx context.Context, id int64) error {
	p.mu.Lock()
	prev := p.selected
	p.selected = id
	p.mu.Unlock()
	p.notify()

	if _, err := p.client.SetAIPreference(ctx, id); err != nil {
		p.mu.Lock()
		p.selected = prev
		p.lastErr = err
		p.mu.Unlock()
		p.notify()
		return err
	}
	return nil
}

// Selected returns the active profile id, or 0 when none is resolved.
func (p *Profiles) Selected() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// SelectedProfile returns the active profile, or nil.
func (p *Profiles) SelectedProfile() *api.AIProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.profiles {
		if p.profiles[i].ID == p.selected {
			return &p.profiles[i]
		}
	}
	return nil
}

// Enabled returns the enabled profiles in list order, the set offered for
// selection.
func (p *Profiles) Enabled() []api.AIProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.AIProfile, 0, len(p.profiles))
	for _, pr := range p.profiles {
		if pr.IsEnabled {
			out = append(out, pr)
		}
	}
	return out
}

// Loading reports whether the initial load is still pending.
func (p *Profiles) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Err returns the most recent load or select error, if any.
func (p *Profiles) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
