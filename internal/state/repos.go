package state

import (
	"context"
	"sync"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// RepoPager accumulates pages of the repository search into one de-duplicated
// list. The backend may return overlapping pages while its sync runs, so
// merging is keyed by repository id with first-seen order preserved. Changing
// the query resets the accumulation.
type RepoPager struct {
	client  *api.Client
	perPage int

	mu    sync.Mutex
	query string
	page  int
	total int
	repos []api.Repository
	seen  map[int64]struct{}
}

// NewRepoPager returns a pager fetching perPage repositories per request.
func NewRepoPager(client *api.Client, perPage int) *RepoPager {
	return &RepoPager{
		client:  client,
		perPage: perPage,
		seen:    map[int64]struct{}{},
	}
}

// SetQuery switches the free-text filter, discarding accumulated pages when
// it changed.
func (rp *RepoPager) SetQuery(q string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if q == rp.query {
		return
	}
	rp.query = q
	rp.reset()
}

// Reset discards all accumulated pages.
func (rp *RepoPager) Reset() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.reset()
}

func (rp *RepoPager) reset() {
	rp.page = 0
	rp.total = 0
	rp.repos = nil
	rp.seen = map[int64]struct{}{}
}

// LoadMore fetches the next page and merges it in. It is a no-op once all
// pages are loaded.
func (rp *RepoPager) LoadMore(ctx context.Context) error {
	rp.mu.Lock()
	if rp.page > 0 && len(rp.repos) >= rp.total {
		rp.mu.Unlock()
		return nil
	}
	next := rp.page + 1
	q := rp.query
	rp.mu.Unlock()

	list, err := rp.client.SearchRepositories(ctx, q, next, rp.perPage)
	if err != nil {
		return err
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()
	if q != rp.query {
		// Query changed while the request was in flight; drop the stale page.
		return nil
	}
	rp.page = next
	rp.total = list.Meta.Total
	rp.merge(list.Data)
	return nil
}

func (rp *RepoPager) merge(page []api.Repository) {
	for _, r := range page {
		if _, dup := rp.seen[r.ID]; dup {
			continue
		}
		rp.seen[r.ID] = struct{}{}
		rp.repos = append(rp.repos, r)
	}
}

// Repos returns the merged list in first-seen order.
func (rp *RepoPager) Repos() []api.Repository {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	out := make([]api.Repository, len(rp.repos))
	copy(out, rp.repos)
	return out
}

// HasMore reports whether further pages remain.
func (rp *RepoPager) HasMore() bool {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.page == 0 || len(rp.repos) < rp.total
}

// Total returns the backend-reported total match count.
func (rp *RepoPager) Total() int {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.total
}

// Find returns the accumulated repository with the given id, or nil.
func (rp *RepoPager) Find(id int64) *api.Repository {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	for i := range rp.repos {
		if rp.repos[i].ID == id {
			return &rp.repos[i]
		}
	}
	return nil
}
