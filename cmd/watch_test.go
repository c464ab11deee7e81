package cmd

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestWatcherPrunesSessionsGoneFromList(t *testing.T) {
	var payload atomic.Value
	payload.Store(`{"data":[{"session_id":"s1","status":"CODING"}],"meta":{"total":1,"page":1,"per_page":100}}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload.Load().(string)))
	}))
	t.Cleanup(srv.Close)

	w := &watcher{client: api.New(srv.URL), last: map[string]string{}}

	w.tick()
	if w.last["s1"] != api.StatusCoding {
		t.Fatalf("last[s1] = %q, want CODING", w.last["s1"])
	}

	// s1 drops off the list (finished, filtered, or paged out): its snapshot
	// must go with it so a later reappearance is treated as new, not compared
	// against stale state.
	payload.Store(`{"data":[],"meta":{"total":0,"page":1,"per_page":100}}`)
	w.tick()
	if _, ok := w.last["s1"]; ok {
		t.Fatalf("session absent from the poll must be pruned from the snapshot")
	}

	payload.Store(`{"data":[{"session_id":"s1","status":"COMPLETED"}],"meta":{"total":1,"page":1,"per_page":100}}`)
	w.tick()
	if w.last["s1"] != api.StatusCompleted {
		t.Fatalf("last[s1] = %q after reappearance, want COMPLETED", w.last["s1"])
	}
}
