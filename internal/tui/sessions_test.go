package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestListPollReplacesRowsWholesale(t *testing.T) {
	var payload atomic.Value
	payload.Store(`{"data":[{"session_id":"s1","title":"first","status":"QUEUED"}],"meta":{"total":1,"page":1,"per_page":20}}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload.Load().(string)))
	}))
	t.Cleanup(srv.Close)

	m := NewSessionsModel(api.New(srv.URL), 30*time.Second, 20)
	m.SetSize(100, 30)
	for _, msg := range runCmd(m.Init()) {
		m, _ = m.Update(msg)
	}
	if len(m.sessions) != 1 || m.sessions[0].SessionID != "s1" {
		t.Fatalf("sessions after first poll: %+v", m.sessions)
	}

	// The next poll returns a different list; no merging, the new page wins.
	payload.Store(`{"data":[{"session_id":"s2","title":"second","status":"CODING"}],"meta":{"total":1,"page":1,"per_page":20}}`)
	m, cmd := m.Update(sessionsTickMsg{seq: m.seq})
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if len(m.sessions) != 1 || m.sessions[0].SessionID != "s2" {
		t.Fatalf("sessions after second poll: %+v", m.sessions)
	}
	if !strings.Contains(m.View(), "second") {
		t.Fatalf("view should render the replaced list")
	}
}

func TestBlurStopsListPolling(t *testing.T) {
	calls := atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"meta":{"total":0,"page":1,"per_page":20}}`))
	}))
	t.Cleanup(srv.Close)

	m := NewSessionsModel(api.New(srv.URL), 30*time.Second, 20)
	for _, msg := range runCmd(m.Init()) {
		m, _ = m.Update(msg)
	}
	stale := m.seq
	before := calls.Load()

	m = m.Blur()
	m, cmd := m.Update(sessionsTickMsg{seq: stale})
	if cmd != nil {
		t.Fatalf("stale tick after Blur must be dropped")
	}
	if calls.Load() != before {
		t.Fatalf("blurred view issued a network call")
	}

	// Focus resumes with a fresh generation.
	m, cmd = m.Update(sessionsLoadedMsg{seq: stale, sessions: []api.Session{{SessionID: "zombie"}}})
	if cmd != nil || len(m.sessions) != 0 {
		t.Fatalf("stale load after Blur must be discarded: %+v", m.sessions)
	}
	m, cmd = m.Focus()
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if calls.Load() != before+1 {
		t.Fatalf("Focus should issue exactly one fresh load, calls=%d", calls.Load())
	}
}

func TestListRefreshSupersedesOldPollingChain(t *testing.T) {
	calls := atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"meta":{"total":0,"page":1,"per_page":20}}`))
	}))
	t.Cleanup(srv.Close)

	m := NewSessionsModel(api.New(srv.URL), 30*time.Second, 20)
	for _, msg := range runCmd(m.Init()) {
		m, _ = m.Update(msg)
	}
	pendingSeq := m.seq

	// Manual refresh starts a fresh chain; the tick the old chain left
	// behind must die, or the view would fetch twice per interval.
	m, cmd := m.Update(keyMsg("r"))
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}

	before := calls.Load()
	m, staleCmd := m.Update(sessionsTickMsg{seq: pendingSeq})
	if staleCmd != nil {
		t.Fatalf("tick from the pre-refresh chain must be dropped")
	}
	_, liveCmd := m.Update(sessionsTickMsg{seq: m.seq})
	if liveCmd == nil {
		t.Fatalf("the current chain must keep polling")
	}
	runCmd(liveCmd)
	if calls.Load() != before+1 {
		t.Fatalf("%d loads in one interval, want exactly 1", calls.Load()-before)
	}
}

func TestListPollFailureKeepsRows(t *testing.T) {
	m := NewSessionsModel(api.New("http://127.0.0.1:0"), 30*time.Second, 20)
	m.sessions = []api.Session{{SessionID: "s1", Status: api.StatusCoding}}
	m.loading = false

	next, cmd := m.Update(sessionsLoadedMsg{seq: m.seq, err: &api.Error{Status: 500, Message: "boom"}})
	if len(next.sessions) != 1 {
		t.Fatalf("poll failure cleared the list")
	}
	if cmd == nil {
		t.Fatalf("a failed poll must still schedule the next tick")
	}
}
