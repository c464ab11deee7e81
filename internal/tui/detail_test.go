package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

// sessionBackend serves a session whose status can be swapped between polls
// and counts requests per path.
type sessionBackend struct {
	status   atomic.Value
	gets     atomic.Int64
	approves atomic.Int64
	srv      *httptest.Server
}

func newSessionBackend(t *testing.T) *sessionBackend {
	t.Helper()
	b := &sessionBackend{}
	b.status.Store(api.StatusCoding)
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/agent/sessions/s1":
			b.gets.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"session_id":"s1","title":"fix tests","status":"` +
				b.status.Load().(string) + `","logs":["cloning","planning"],"state":{"goal":"fix tests"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/agent/sessions/s1/approve":
			b.approves.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

// runCmd executes a command returned by Update and feeds nested batches,
// returning the messages produced by leaf commands.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestStatusTransitionRevealsApprovalAndImmediateRefetch(t *testing.T) {
	b := newSessionBackend(t)
	m := NewDetailModel(api.New(b.srv.URL), 2*time.Second)
	m.SetSize(100, 30)

	m, cmd := m.Open("s1")
	// First poll: CODING.
	msgs := runCmd(cmd)
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	if m.session == nil || m.session.Status != api.StatusCoding {
		t.Fatalf("session after first poll: %+v", m.session)
	}
	if strings.Contains(m.View(), "approve & resume") {
		t.Fatalf("approve control must be hidden while CODING")
	}

	// Second poll: server moved to WAITING_FOR_USER; display follows
	// wholesale.
	b.status.Store(api.StatusWaitingForUser)
	m, cmd = m.Update(detailTickMsg{seq: m.seq})
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if m.session.Status != api.StatusWaitingForUser {
		t.Fatalf("status = %q, want WAITING_FOR_USER", m.session.Status)
	}
	if !strings.Contains(m.View(), "approve & resume") {
		t.Fatalf("approve control should be visible when WAITING_FOR_USER")
	}

	// Approve: the success path must refetch immediately, without waiting
	// for the next scheduled tick.
	getsBefore := b.gets.Load()
	m, cmd = m.Update(keyMsg("a"))
	for _, msg := range runCmd(cmd) { // actionDoneMsg
		m, cmd = m.Update(msg)
	}
	if b.approves.Load() != 1 {
		t.Fatalf("approve calls = %d, want 1", b.approves.Load())
	}
	runCmd(cmd) // the immediate refetch
	if got := b.gets.Load(); got != getsBefore+1 {
		t.Fatalf("gets after approve = %d, want %d (immediate out-of-band refetch)", got, getsBefore+1)
	}
}

func TestActionRefetchSupersedesOldPollingChain(t *testing.T) {
	b := newSessionBackend(t)
	b.status.Store(api.StatusWaitingForUser)
	m := NewDetailModel(api.New(b.srv.URL), 2*time.Second)
	m.SetSize(100, 30)

	m, cmd := m.Open("s1")
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	pendingSeq := m.seq // carried by the tick the first load scheduled

	// Approve, then process its immediate refetch and the refetch's result.
	m, cmd = m.Update(keyMsg("a"))
	for _, msg := range runCmd(cmd) { // actionDoneMsg
		m, cmd = m.Update(msg)
	}
	for _, msg := range runCmd(cmd) { // refetch's detailLoadedMsg
		m, _ = m.Update(msg)
	}

	// Both ticks arrive within one interval: only the current generation's
	// may fetch, so exactly one load happens per interval.
	gets := b.gets.Load()
	m, staleCmd := m.Update(detailTickMsg{seq: pendingSeq})
	if staleCmd != nil {
		t.Fatalf("tick from the pre-approve chain must be dropped")
	}
	m, liveCmd := m.Update(detailTickMsg{seq: m.seq})
	if liveCmd == nil {
		t.Fatalf("the current chain must keep polling")
	}
	runCmd(liveCmd)
	if got := b.gets.Load(); got != gets+1 {
		t.Fatalf("%d loads in one interval, want exactly 1", got-gets)
	}
}

func TestManualRefreshSupersedesOldPollingChain(t *testing.T) {
	b := newSessionBackend(t)
	m := NewDetailModel(api.New(b.srv.URL), 2*time.Second)
	m.SetSize(100, 30)

	m, cmd := m.Open("s1")
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	pendingSeq := m.seq

	m, cmd = m.Update(keyMsg("r"))
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}

	m, staleCmd := m.Update(detailTickMsg{seq: pendingSeq})
	if staleCmd != nil {
		t.Fatalf("refresh must retire the previous polling chain")
	}
	if _, liveCmd := m.Update(detailTickMsg{seq: m.seq}); liveCmd == nil {
		t.Fatalf("refresh must leave one live polling chain")
	}
}

func TestPollFailureKeepsLastKnownSession(t *testing.T) {
	b := newSessionBackend(t)
	m := NewDetailModel(api.New(b.srv.URL), 2*time.Second)
	m.SetSize(100, 30)

	m, cmd := m.Open("s1")
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if m.session == nil {
		t.Fatalf("precondition: session loaded")
	}

	// A failed poll delivers an error msg; displayed state is unchanged.
	m, _ = m.Update(detailLoadedMsg{seq: m.seq, err: &api.Error{Status: 502, Message: "bad gateway"}})
	if m.session == nil || m.session.Status != api.StatusCoding {
		t.Fatalf("poll failure must not clear the displayed session: %+v", m.session)
	}
	if strings.Contains(m.View(), "bad gateway") {
		t.Fatalf("poll failures are swallowed, not rendered")
	}
}

func TestCloseCancelsPolling(t *testing.T) {
	b := newSessionBackend(t)
	m := NewDetailModel(api.New(b.srv.URL), 2*time.Second)

	m, cmd := m.Open("s1")
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	staleSeq := m.seq
	gets := b.gets.Load()

	m = m.Close()

	// A tick scheduled before Close arrives afterwards: it must be dropped
	// and no further fetch issued for the closed view.
	m, cmd = m.Update(detailTickMsg{seq: staleSeq})
	if cmd != nil {
		t.Fatalf("stale tick after Close must not schedule work")
	}
	if b.gets.Load() != gets {
		t.Fatalf("network calls after Close: %d, want %d", b.gets.Load(), gets)
	}

	// Likewise an in-flight load resolving late is discarded.
	m, cmd = m.Update(detailLoadedMsg{seq: staleSeq, session: &api.Session{SessionID: "s1", Status: "FAILED"}})
	if cmd != nil {
		t.Fatalf("stale load after Close must not reschedule")
	}
}

func TestUnknownStatusRendersVerbatim(t *testing.T) {
	m := NewDetailModel(api.New("http://127.0.0.1:0"), time.Second)
	m.SetSize(100, 30)
	m.loading = false
	m.session = &api.Session{SessionID: "s9", Status: "ARCHIVED", Logs: []string{"x"}}
	if !strings.Contains(m.View(), "ARCHIVED") {
		t.Fatalf("unrecognised status must pass through verbatim")
	}
}
